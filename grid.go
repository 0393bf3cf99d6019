package img2grid

import "fmt"

// Grid is a two dimensional symbol array indexed [y][x]. A well-formed
// grid is rectangular; ParseRaw may produce ragged grids, which Validate
// rejects.
//
// Grids are treated as values. Every editing operation returns a fresh
// grid and leaves its receiver untouched.
type Grid [][]Symbol

// NewGrid returns a width x height grid with every cell set to fill.
func NewGrid(width, height int, fill Symbol) (Grid, error) {
	if width <= 0 {
		return nil, &PreconditionError{Field: "width", Value: width}
	}
	if height <= 0 {
		return nil, &PreconditionError{Field: "height", Value: height}
	}
	g := make(Grid, height)
	for y := range g {
		row := make([]Symbol, width)
		for x := range row {
			row[x] = fill
		}
		g[y] = row
	}
	return g, nil
}

// Width returns the length of the first row, or 0 for an empty grid.
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Height returns the number of rows.
func (g Grid) Height() int {
	return len(g)
}

// InBounds reports whether (x, y) addresses an existing cell. Ragged rows
// are checked against their own length.
func (g Grid) InBounds(x, y int) bool {
	return y >= 0 && y < len(g) && x >= 0 && x < len(g[y])
}

// At returns the symbol at (x, y).
func (g Grid) At(x, y int) (Symbol, error) {
	if !g.InBounds(x, y) {
		return 0, g.indexError(x, y)
	}
	return g[y][x], nil
}

// Clone returns a deep copy of g.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	clone := make(Grid, len(g))
	for y, row := range g {
		clone[y] = append([]Symbol(nil), row...)
	}
	return clone
}

// Equal reports whether both grids have the same rows and cells.
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for y := range g {
		if len(g[y]) != len(other[y]) {
			return false
		}
		for x := range g[y] {
			if g[y][x] != other[y][x] {
				return false
			}
		}
	}
	return true
}

// SetCell returns a copy of g with (x, y) replaced by s.
func (g Grid) SetCell(x, y int, s Symbol) (Grid, error) {
	if !g.InBounds(x, y) {
		return nil, g.indexError(x, y)
	}
	next := g.Clone()
	next[y][x] = s
	return next, nil
}

// Cycle returns a copy of g with (x, y) advanced to its Next symbol.
func (g Grid) Cycle(x, y int) (Grid, error) {
	s, err := g.At(x, y)
	if err != nil {
		return nil, err
	}
	return g.SetCell(x, y, s.Next())
}

// Validate checks that every row has the same length.
func (g Grid) Validate() error {
	width := g.Width()
	for y, row := range g {
		if len(row) != width {
			return fmt.Errorf("row %d has %d cells, expected %d",
				y, len(row), width)
		}
	}
	return nil
}

// ValidateSymbols checks that every cell holds Light, Dark or Accent.
func (g Grid) ValidateSymbols() error {
	for y, row := range g {
		for x, s := range row {
			if !s.Valid() {
				return fmt.Errorf("cell (%d,%d) holds %q", x, y, s.String())
			}
		}
	}
	return nil
}

func (g Grid) indexError(x, y int) *IndexError {
	return &IndexError{X: x, Y: y, Width: g.Width(), Height: g.Height()}
}
