package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroStep is returned when a Range has a step of zero.
	ErrZeroStep = errors.New("slice step cannot be zero")

	// ErrIndexOutOfRange is returned when an explicit index falls outside an axis.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Range selects positions along one axis as [start:stop:step]. Negative
// bounds count from the end of the axis, out-of-range bounds are clamped,
// and an open bound means "from the beginning" or "to the end" in the
// direction of the step. A zero Step is treated as 1, so the zero Range is
// the empty selection [0:0].
type Range struct {
	Start, Stop         int
	OpenStart, OpenStop bool
	Step                int

	zeroStep bool
}

// All selects the whole axis, [:].
var All = Range{OpenStart: true, OpenStop: true}

// Span selects [start:stop].
func Span(start, stop int) Range { return Range{Start: start, Stop: stop} }

// From selects [start:].
func From(start int) Range { return Range{Start: start, OpenStop: true} }

// Until selects [:stop].
func Until(stop int) Range { return Range{Stop: stop, OpenStart: true} }

// By returns r with the given step. A step of zero is rejected by Indices.
func (r Range) By(step int) Range {
	r.Step = step
	r.zeroStep = step == 0
	return r
}

// Indices resolves the range against an axis of the given length.
func (r Range) Indices(length int) ([]int, error) {
	if r.zeroStep {
		return nil, ErrZeroStep
	}
	step := r.Step
	if step == 0 {
		step = 1
	}

	lower, upper := 0, length
	if step < 0 {
		lower, upper = -1, length-1
	}

	start := upper
	if step > 0 {
		start = lower
	}
	if !r.OpenStart {
		start = clampBound(r.Start, length, lower, upper)
	}

	stop := lower
	if step > 0 {
		stop = upper
	}
	if !r.OpenStop {
		stop = clampBound(r.Stop, length, lower, upper)
	}

	var idx []int
	if step > 0 {
		for i := start; i < stop; i += step {
			idx = append(idx, i)
		}
	} else {
		for i := start; i > stop; i += step {
			idx = append(idx, i)
		}
	}
	return idx, nil
}

func clampBound(b, length, lower, upper int) int {
	if b < 0 {
		b += length
	}
	return min(max(b, lower), upper)
}

func (r Range) String() string {
	s := ""
	if !r.OpenStart {
		s += fmt.Sprint(r.Start)
	}
	s += ":"
	if !r.OpenStop {
		s += fmt.Sprint(r.Stop)
	}
	if r.Step != 0 || r.zeroStep {
		s += ":" + fmt.Sprint(r.Step)
	}
	return s
}

func normalizeIndex(i, length int) (int, error) {
	n := i
	if n < 0 {
		n += length
	}
	if n < 0 || n >= length {
		return 0, fmt.Errorf("index %d for axis of length %d: %w", i, length, ErrIndexOutOfRange)
	}
	return n, nil
}

// SliceOf copies the elements of s selected by r.
func SliceOf[T any](s []T, r Range) ([]T, error) {
	idx, err := r.Indices(len(s))
	if err != nil {
		return nil, err
	}
	out := make([]T, len(idx))
	for k, i := range idx {
		out[k] = s[i]
	}
	return out, nil
}

// Take copies the elements at the given positions (fancy indexing).
// Negative positions count from the end.
func Take[T any](s []T, positions ...int) ([]T, error) {
	out := make([]T, len(positions))
	for k, p := range positions {
		i, err := normalizeIndex(p, len(s))
		if err != nil {
			return nil, err
		}
		out[k] = s[i]
	}
	return out, nil
}

// EveryNth selects every n-th element, skipping the first n-1: s[n-1::n].
func EveryNth[T any](s []T, n int) ([]T, error) {
	if n <= 0 {
		return nil, ErrZeroStep
	}
	return SliceOf(s, From(n-1).By(n))
}

// Slice selects a sub-grid. The result keeps two dimensions even when a
// range selects a single row or column.
func (g Grid) Slice(rows, cols Range) (Grid, error) {
	ri, err := rows.Indices(g.Rows)
	if err != nil {
		return Grid{}, fmt.Errorf("rows %s: %w", rows, err)
	}
	ci, err := cols.Indices(g.Cols)
	if err != nil {
		return Grid{}, fmt.Errorf("cols %s: %w", cols, err)
	}
	return g.gather(ri, ci), nil
}

// TakeCols selects columns by position, e.g. TakeCols(1, -1).
func (g Grid) TakeCols(positions ...int) (Grid, error) {
	ci := make([]int, len(positions))
	for k, p := range positions {
		j, err := normalizeIndex(p, g.Cols)
		if err != nil {
			return Grid{}, err
		}
		ci[k] = j
	}
	ri, _ := All.Indices(g.Rows)
	return g.gather(ri, ci), nil
}

// TakeRows selects rows by position.
func (g Grid) TakeRows(positions ...int) (Grid, error) {
	ri := make([]int, len(positions))
	for k, p := range positions {
		i, err := normalizeIndex(p, g.Rows)
		if err != nil {
			return Grid{}, err
		}
		ri[k] = i
	}
	ci, _ := All.Indices(g.Cols)
	return g.gather(ri, ci), nil
}

func (g Grid) gather(ri, ci []int) Grid {
	out := NewGrid(len(ri), len(ci))
	for a, i := range ri {
		row := g.Row(i)
		dst := out.Row(a)
		for b, j := range ci {
			dst[b] = row[j]
		}
	}
	return out
}
