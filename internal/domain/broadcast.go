package domain

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// ErrNonFinite is returned when a NaN or infinite bound makes a range undefined.
var ErrNonFinite = errors.New("non-finite value")

// Number is any built-in integer or floating-point type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Float64s promotes a numeric slice to float64, the way mixed int/float
// arithmetic upcasts to the wider floating type.
func Float64s[T Number](xs []T) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

// AddMixed adds an integer vector to a float vector elementwise. The
// integers are promoted, so the result is always float64.
func AddMixed[I constraints.Integer, F constraints.Float](a []I, f []F) ([]float64, error) {
	if len(a) != len(f) {
		return nil, fmt.Errorf("add %d ints to %d floats: %w", len(a), len(f), ErrShapeMismatch)
	}
	out := Float64s(a)
	for i, x := range f {
		out[i] += float64(x)
	}
	return out, nil
}

// Arange returns evenly spaced values in [start, stop) with the given step.
// The length is ceil((stop-start)/step), clamped at zero.
func Arange(start, stop, step float64) ([]float64, error) {
	for _, v := range [...]float64{start, stop, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("arange(%g, %g, %g): %w", start, stop, step, ErrNonFinite)
		}
	}
	if step == 0 {
		return nil, ErrZeroStep
	}
	n := int(max(math.Ceil((stop-start)/step), 0))
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out, nil
}

// Map applies fn to every element (a unary elementwise function).
func Map(g Grid, fn func(float64) float64) Grid {
	out := NewGrid(g.Rows, g.Cols)
	for i, v := range g.data {
		out.data[i] = fn(v)
	}
	return out
}

// AddScalar adds v to every element.
func AddScalar(g Grid, v float64) Grid {
	return Map(g, func(x float64) float64 { return x + v })
}

// Add returns a+b with 2D broadcasting.
func Add(a, b Grid) (Grid, error) { return broadcast(a, b, func(x, y float64) float64 { return x + y }) }

// Sub returns a-b with 2D broadcasting.
func Sub(a, b Grid) (Grid, error) { return broadcast(a, b, func(x, y float64) float64 { return x - y }) }

// Mul returns a*b with 2D broadcasting.
func Mul(a, b Grid) (Grid, error) { return broadcast(a, b, func(x, y float64) float64 { return x * y }) }

// Div returns a/b with 2D broadcasting. Division by zero follows IEEE 754.
func Div(a, b Grid) (Grid, error) { return broadcast(a, b, func(x, y float64) float64 { return x / y }) }

// broadcast combines two grids elementwise. Along each axis the lengths
// must match, or one of them must be 1, in which case that operand is
// repeated along the axis.
func broadcast(a, b Grid, op func(x, y float64) float64) (Grid, error) {
	rows, err := broadcastDim(a.Rows, b.Rows)
	if err != nil {
		return Grid{}, fmt.Errorf("broadcast %dx%d with %dx%d: %w", a.Rows, a.Cols, b.Rows, b.Cols, err)
	}
	cols, err := broadcastDim(a.Cols, b.Cols)
	if err != nil {
		return Grid{}, fmt.Errorf("broadcast %dx%d with %dx%d: %w", a.Rows, a.Cols, b.Rows, b.Cols, err)
	}

	out := NewGrid(rows, cols)
	for i := 0; i < rows; i++ {
		ar, br := a.Row(i%a.Rows), b.Row(i%b.Rows)
		dst := out.Row(i)
		for j := range dst {
			dst[j] = op(ar[j%a.Cols], br[j%b.Cols])
		}
	}
	return out, nil
}

func broadcastDim(m, n int) (int, error) {
	switch {
	case m == n:
		return m, nil
	case m == 1:
		return n, nil
	case n == 1:
		return m, nil
	default:
		return 0, ErrShapeMismatch
	}
}
