package domain

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShapeMismatch is returned when two grids cannot be combined elementwise.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrEmptyGrid is returned by operations that need at least one element.
	ErrEmptyGrid = errors.New("empty grid")
)

// Grid is a row-major 2D array of float64 values. Grids are treated as
// immutable: every operation returns a new Grid. Either dimension may be
// zero, which is how repeated smoothing represents an exhausted image.
type Grid struct {
	Rows int
	Cols int
	data []float64
}

// NewGrid returns a zero-filled grid. Negative dimensions are clamped to 0.
func NewGrid(rows, cols int) Grid {
	rows, cols = max(rows, 0), max(cols, 0)
	return Grid{Rows: rows, Cols: cols, data: make([]float64, rows*cols)}
}

// FromRows copies a slice of equal-length rows into a new grid.
func FromRows(rows [][]float64) (Grid, error) {
	if len(rows) == 0 {
		return Grid{}, nil
	}
	g := NewGrid(len(rows), len(rows[0]))
	for i, r := range rows {
		if len(r) != g.Cols {
			return Grid{}, fmt.Errorf("row %d has %d values, want %d: %w", i, len(r), g.Cols, ErrShapeMismatch)
		}
		copy(g.Row(i), r)
	}
	return g, nil
}

// Reshape lays data out as a rows×cols grid. The data is copied.
func Reshape(data []float64, rows, cols int) (Grid, error) {
	if rows < 0 || cols < 0 || rows*cols != len(data) {
		return Grid{}, fmt.Errorf("cannot reshape %d values into %dx%d: %w", len(data), rows, cols, ErrShapeMismatch)
	}
	g := NewGrid(rows, cols)
	copy(g.data, data)
	return g, nil
}

// Filled returns a rows×cols grid with every element set to v.
func Filled(rows, cols int, v float64) Grid {
	g := NewGrid(rows, cols)
	for i := range g.data {
		g.data[i] = v
	}
	return g
}

// Size is the number of elements.
func (g Grid) Size() int { return g.Rows * g.Cols }

// Empty reports whether the grid has no elements.
func (g Grid) Empty() bool { return g.Size() == 0 }

// Shape returns (rows, cols).
func (g Grid) Shape() (int, int) { return g.Rows, g.Cols }

// At returns the element at (i, j). It panics when out of range, like a slice index.
func (g Grid) At(i, j int) float64 {
	if i < 0 || i >= g.Rows || j < 0 || j >= g.Cols {
		panic(fmt.Sprintf("grid index (%d, %d) out of range %dx%d", i, j, g.Rows, g.Cols))
	}
	return g.data[i*g.Cols+j]
}

// Row returns row i as a view into the grid's storage. Callers that did not
// create the grid must not write through it.
func (g Grid) Row(i int) []float64 {
	return g.data[i*g.Cols : (i+1)*g.Cols : (i+1)*g.Cols]
}

// RowAt returns a copy of row i; negative i counts from the end.
func (g Grid) RowAt(i int) ([]float64, error) {
	i, err := normalizeIndex(i, g.Rows)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), g.Row(i)...), nil
}

// ColAt returns a copy of column j; negative j counts from the end.
func (g Grid) ColAt(j int) ([]float64, error) {
	j, err := normalizeIndex(j, g.Cols)
	if err != nil {
		return nil, err
	}
	col := make([]float64, g.Rows)
	for i := range col {
		col[i] = g.data[i*g.Cols+j]
	}
	return col, nil
}

// Values returns a copy of the elements in row-major order.
func (g Grid) Values() []float64 {
	return append([]float64(nil), g.data...)
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	return Grid{Rows: g.Rows, Cols: g.Cols, data: g.Values()}
}

// Dense converts the grid to a gonum matrix. gonum cannot represent
// zero-sized matrices, so empty grids return ErrEmptyGrid.
func (g Grid) Dense() (*mat.Dense, error) {
	if g.Empty() {
		return nil, ErrEmptyGrid
	}
	return mat.NewDense(g.Rows, g.Cols, g.Values()), nil
}

// FromDense copies a gonum matrix into a grid.
func FromDense(m mat.Matrix) Grid {
	r, c := m.Dims()
	g := NewGrid(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			g.data[i*c+j] = m.At(i, j)
		}
	}
	return g
}

// Describe returns summary statistics over every element.
func (g Grid) Describe() (Stats, error) {
	if g.Empty() {
		return Stats{}, ErrEmptyGrid
	}
	return describe(g.data), nil
}
