package img2grid

import (
	"image"
	"math"
)

const (
	// DefaultWidth and DefaultHeight are the grid size used when none is
	// configured.
	DefaultWidth  = 19
	DefaultHeight = 19
)

// Quantizer converts images to grids of a fixed size.
type Quantizer struct {
	Width  int
	Height int
}

// QuantizerOption is a functional option for configuring a Quantizer.
type QuantizerOption func(*Quantizer)

// NewQuantizer creates a Quantizer with the given options.
// Default size is DefaultWidth x DefaultHeight.
func NewQuantizer(opts ...QuantizerOption) *Quantizer {
	q := &Quantizer{
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// WithSize sets both grid dimensions.
func WithSize(width, height int) QuantizerOption {
	return func(q *Quantizer) {
		q.Width = width
		q.Height = height
	}
}

// WithWidth sets the number of grid columns.
func WithWidth(width int) QuantizerOption {
	return func(q *Quantizer) {
		q.Width = width
	}
}

// WithHeight sets the number of grid rows.
func WithHeight(height int) QuantizerOption {
	return func(q *Quantizer) {
		q.Height = height
	}
}

// Quantize converts img using the configured size.
func (q *Quantizer) Quantize(img image.Image) (Grid, error) {
	return Quantize(img, q.Width, q.Height)
}

// SamplePoint returns the source pixel, relative to the image origin, that
// represents cell (x, y) of a gridW x gridH grid laid over an imgW x imgH
// image. It is the pixel at the center of the cell's bounding box.
func SamplePoint(imgW, imgH, gridW, gridH, x, y int) image.Point {
	cellW := float64(imgW) / float64(gridW)
	cellH := float64(imgH) / float64(gridH)
	px := int(math.Floor(float64(x)*cellW + cellW/2))
	py := int(math.Floor(float64(y)*cellH + cellH/2))
	return image.Point{X: clamp(px, 0, imgW-1), Y: clamp(py, 0, imgH-1)}
}

// Quantize samples one pixel per cell of a width x height grid laid over
// img and classifies it. Cells are visited row by row.
func Quantize(img image.Image, width, height int) (Grid, error) {
	if width <= 0 {
		return nil, &PreconditionError{Field: "width", Value: width}
	}
	if height <= 0 {
		return nil, &PreconditionError{Field: "height", Value: height}
	}
	bounds := img.Bounds()
	imgW, imgH := bounds.Dx(), bounds.Dy()
	if imgW <= 0 {
		return nil, &PreconditionError{Field: "image width", Value: imgW}
	}
	if imgH <= 0 {
		return nil, &PreconditionError{Field: "image height", Value: imgH}
	}

	grid := make(Grid, height)
	for y := 0; y < height; y++ {
		row := make([]Symbol, width)
		for x := 0; x < width; x++ {
			p := SamplePoint(imgW, imgH, width, height, x, y).Add(bounds.Min)
			row[x] = ClassifyColor(img.At(p.X, p.Y))
		}
		grid[y] = row
	}
	return grid, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
