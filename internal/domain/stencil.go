package domain

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// stencilPoints is the number of samples in the 5-point stencil:
//
//	0 x 0
//	x x x
//	0 x 0
const stencilPoints = 5

// Smooth applies the 5-point averaging stencil. Each output pixel is the
// unweighted mean of an interior pixel and its four direct neighbours, so
// the result is one pixel smaller on every border. Grids with fewer than
// three rows or columns produce a zero-sized grid.
func Smooth(g Grid) Grid {
	out := NewGrid(g.Rows-2, g.Cols-2)
	if out.Empty() {
		return out
	}

	c := g.Cols
	for i := 0; i < out.Rows; i++ {
		dst := out.Row(i)
		top := g.Row(i)[1 : c-1]
		mid := g.Row(i + 1)
		bottom := g.Row(i + 2)[1 : c-1]

		// Shifted views, summed in the order top, left, bottom, right, centre.
		copy(dst, top)
		floats.Add(dst, mid[:c-2])
		floats.Add(dst, bottom)
		floats.Add(dst, mid[2:])
		floats.Add(dst, mid[1:c-1])
		for j := range dst {
			dst[j] /= stencilPoints
		}
	}
	return out
}

// SmoothLoop computes the same stencil one pixel at a time. It exists as a
// readable reference for Smooth and must agree with it exactly.
func SmoothLoop(g Grid) Grid {
	out := NewGrid(g.Rows-2, g.Cols-2)
	for i := 1; i < g.Rows-1; i++ {
		for j := 1; j < g.Cols-1; j++ {
			sum := g.At(i-1, j) + g.At(i, j-1) + g.At(i+1, j) + g.At(i, j+1) + g.At(i, j)
			out.data[(i-1)*out.Cols+(j-1)] = sum / stencilPoints
		}
	}
	return out
}

// Refilter applies Smooth n times, shrinking the grid by 2n rows and
// columns. Iteration counts beyond what the grid can absorb are not an
// error: the result bottoms out at zero size. n <= 0 returns g unchanged.
func Refilter(g Grid, n int) Grid {
	smoothed := g
	for range max(n, 0) {
		smoothed = Smooth(smoothed)
	}
	return smoothed
}

// Crop removes n pixels from every border. n == 0 returns the full grid.
func Crop(g Grid, n int) Grid {
	if n <= 0 {
		return g
	}
	out, err := g.Slice(Span(n, -n), Span(n, -n))
	if err != nil {
		// Span never has a zero step.
		panic(err)
	}
	return out
}

// Difference returns smoothed minus the original cropped by n pixels per
// border, i.e. what n smoothing passes changed at each surviving pixel.
func Difference(smoothed, original Grid, n int) (Grid, error) {
	cropped := Crop(original, n)
	if smoothed.Rows != cropped.Rows || smoothed.Cols != cropped.Cols {
		return Grid{}, fmt.Errorf("difference after %d passes: %dx%d vs %dx%d: %w",
			n, smoothed.Rows, smoothed.Cols, cropped.Rows, cropped.Cols, ErrShapeMismatch)
	}
	out := smoothed.Clone()
	floats.Sub(out.data, cropped.data)
	return out, nil
}
