package img2grid

import (
	"strings"
)

const (
	ESC = "\u001b"
)

// ansiCodes maps each symbol to the SGR parameters used to draw it: black
// text on a bright background in the symbol's swatch color.
var ansiCodes = map[Symbol]string{
	Light:  "30;107",
	Dark:   "30;100",
	Accent: "30;103",
}

// RenderANSI renders g for a color terminal. Adjacent cells holding the
// same symbol share one escape sequence, and colors are reset at the end
// of every row.
func RenderANSI(g Grid) string {
	var sb strings.Builder
	for _, row := range g {
		var current string
		var run []rune
		for _, s := range row {
			code := ansiCode(s)
			if code != current && len(run) > 0 {
				sb.WriteString(formatANSICode(current, run))
				run = run[:0]
			}
			current = code
			run = append(run, rune(s))
		}
		if len(run) > 0 {
			sb.WriteString(formatANSICode(current, run))
		}
		sb.WriteString(ESC + "[0m\n")
	}
	return sb.String()
}

// ansiCode returns the SGR parameters for s. Characters outside the symbol
// set are drawn with the terminal defaults.
func ansiCode(s Symbol) string {
	if code, ok := ansiCodes[s]; ok {
		return code
	}
	return "0"
}

// formatANSICode formats one escape sequence followed by the run of
// characters it colors.
func formatANSICode(code string, run []rune) string {
	var sb strings.Builder
	sb.WriteString(ESC)
	sb.WriteByte('[')
	sb.WriteString(code)
	sb.WriteByte('m')
	sb.WriteString(string(run))
	return sb.String()
}
