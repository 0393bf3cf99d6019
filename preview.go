package img2grid

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/wbrown/img2grid/imageutil"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// DefaultCellSize is the edge length in pixels of one rendered cell.
const DefaultCellSize = 24

// gridLine is the color of the one pixel border drawn around each cell.
var gridLine = color.RGBA{R: 107, G: 114, B: 128, A: 255}

// PreviewRenderer draws grids as images: one bordered square per cell,
// filled with the symbol swatch and labeled with the symbol glyph.
type PreviewRenderer struct {
	CellSize int
	font     *truetype.Font
}

// NewPreviewRenderer creates a renderer using the embedded Go Mono face.
// A cellSize below 4 is raised to 4.
func NewPreviewRenderer(cellSize int) (*PreviewRenderer, error) {
	if cellSize < 4 {
		cellSize = 4
	}
	ttf, err := freetype.ParseFont(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &PreviewRenderer{CellSize: cellSize, font: ttf}, nil
}

// Render draws g. Ragged rows are drawn as they are; the image is as wide
// as the longest row.
func (pr *PreviewRenderer) Render(g Grid) *image.RGBA {
	width := 0
	for _, row := range g {
		if len(row) > width {
			width = len(row)
		}
	}
	cell := pr.CellSize
	img := image.NewRGBA(image.Rect(0, 0, width*cell, len(g)*cell))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	ctx := pr.newContext(img)
	for y, row := range g {
		for x, s := range row {
			pr.renderCell(ctx, img, s, x*cell, y*cell)
		}
	}
	return img
}

// SavePNG renders g and writes it to path.
func (pr *PreviewRenderer) SavePNG(g Grid, path string) error {
	return imageutil.SavePNG(pr.Render(g), path)
}

// SideBySide places src, scaled to the rendered grid's height, to the left
// of the rendered grid.
func (pr *PreviewRenderer) SideBySide(src image.Image, g Grid) *image.RGBA {
	rendered := pr.Render(g)
	h := rendered.Bounds().Dy()
	b := src.Bounds()
	if h == 0 || b.Dy() == 0 {
		return rendered
	}
	w := b.Dx() * h / b.Dy()
	if w < 1 {
		w = 1
	}
	scaled := imageutil.Resize(imageutil.RGBAImageFromImage(src), w, h,
		imageutil.InterpolationLinear)

	gap := pr.CellSize / 2
	out := image.NewRGBA(image.Rect(0, 0, w+gap+rendered.Bounds().Dx(), h))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(0, 0, w, h), scaled.RGBA, image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(w+gap, 0, out.Bounds().Dx(), h), rendered,
		image.Point{}, draw.Src)
	return out
}

func (pr *PreviewRenderer) newContext(dst draw.Image) *freetype.Context {
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(pr.font)
	ctx.SetFontSize(float64(pr.CellSize) * 0.6)
	ctx.SetClip(dst.Bounds())
	ctx.SetDst(dst)
	ctx.SetSrc(image.Black)
	ctx.SetHinting(font.HintingFull)
	return ctx
}

// renderCell fills the cell square at (startX, startY) and draws the
// symbol glyph roughly centered in it.
func (pr *PreviewRenderer) renderCell(ctx *freetype.Context, img *image.RGBA, s Symbol, startX, startY int) {
	cell := pr.CellSize
	outer := image.Rect(startX, startY, startX+cell, startY+cell)
	draw.Draw(img, outer, &image.Uniform{C: gridLine}, image.Point{}, draw.Src)
	inner := outer.Inset(1)
	draw.Draw(img, inner, &image.Uniform{C: s.Color()}, image.Point{}, draw.Src)

	size := float64(cell) * 0.6
	// Monospace advance is about 0.6 em; baseline sits a third below center.
	x := startX + (cell-int(size*0.6))/2
	y := startY + cell/2 + int(size/3)
	ctx.DrawString(s.String(), freetype.Pt(x, y))
}
