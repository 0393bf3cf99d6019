package img2grid

import (
	"fmt"
	"image/color"
)

// Symbol is a single cell of a Grid. Only the three constants below are
// valid in a well-formed grid, but text parsed from user input may carry
// any character, so the type is wide enough to hold one.
type Symbol rune

const (
	// Light marks background or near-white pixels.
	Light Symbol = '_'
	// Dark is the neutral class every unmatched pixel falls into.
	Dark Symbol = '#'
	// Accent marks bright yellow highlight pixels.
	Accent Symbol = '$'
)

// Classification thresholds. All comparisons are strict.
const (
	lightMin    = 240
	accentMinRG = 230
	accentMaxB  = 100
)

// Classify maps an 8-bit RGB triple to a Symbol. Light is tested before
// Accent, anything else is Dark.
func Classify(r, g, b uint8) Symbol {
	if r > lightMin && g > lightMin && b > lightMin {
		return Light
	}
	if r > accentMinRG && g > accentMinRG && b < accentMaxB {
		return Accent
	}
	return Dark
}

// ClassifyColor classifies any color.Color. Channels are read
// non-premultiplied, the way a canvas reports them; alpha takes no part.
func ClassifyColor(c color.Color) Symbol {
	nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Classify(nrgba.R, nrgba.G, nrgba.B)
}

// Valid reports whether s is one of Light, Dark or Accent.
func (s Symbol) Valid() bool {
	return s == Light || s == Dark || s == Accent
}

func (s Symbol) String() string {
	return string(rune(s))
}

// Next returns the symbol that follows s in the editing cycle
// Light -> Dark -> Accent -> Light. Invalid symbols restart at Light.
func (s Symbol) Next() Symbol {
	switch s {
	case Light:
		return Dark
	case Dark:
		return Accent
	default:
		return Light
	}
}

// Color returns the swatch used when drawing s.
func (s Symbol) Color() color.RGBA {
	switch s {
	case Light:
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	case Dark:
		return color.RGBA{R: 156, G: 163, B: 175, A: 255}
	case Accent:
		return color.RGBA{R: 253, G: 224, B: 71, A: 255}
	}
	return color.RGBA{R: 255, G: 0, B: 255, A: 255}
}

// ParseSymbol converts a one character string to a Symbol. Besides the
// literal characters it accepts the tool names white, gray and yellow.
func ParseSymbol(s string) (Symbol, error) {
	switch s {
	case "_", "white", "light":
		return Light, nil
	case "#", "gray", "grey", "dark":
		return Dark, nil
	case "$", "yellow", "accent":
		return Accent, nil
	}
	return 0, fmt.Errorf("unknown symbol %q, options are _, # or $", s)
}
