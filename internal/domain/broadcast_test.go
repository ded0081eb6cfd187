package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMixed_PromotesToFloat(t *testing.T) {
	a := []int64{11, 2, 3, 4}
	f := []float64{1.2, 2.3, 4.5, 5.6}

	got, err := AddMixed(a, f)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{12.2, 4.3, 7.5, 9.6}, got, 1e-12)

	_, err = AddMixed(a, f[:2])
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestFloat64s(t *testing.T) {
	assert.Equal(t, []float64{1, -2, 3}, Float64s([]int8{1, -2, 3}))
	assert.Equal(t, []float64{0.5}, Float64s([]float32{0.5}))
}

func TestArange(t *testing.T) {
	got, err := Arange(45, 70, 2)
	require.NoError(t, err)
	assert.Len(t, got, 13)
	assert.Equal(t, 45.0, got[0])
	assert.Equal(t, 69.0, got[12])

	got, err = Arange(3, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2, 1}, got)

	got, err = Arange(5, 0, 1)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Arange(0, 1, 0)
	require.ErrorIs(t, err, ErrZeroStep)
}

func TestArange_NonFiniteBounds(t *testing.T) {
	tests := []struct {
		name              string
		start, stop, step float64
	}{
		{"nan stop", 0, math.NaN(), 1},
		{"nan step", 0, 5, math.NaN()},
		{"nan start", math.NaN(), 5, 1},
		{"inf stop", 0, math.Inf(1), 1},
		{"inf step", 0, 5, math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Arange(tt.start, tt.stop, tt.step)
			require.ErrorIs(t, err, ErrNonFinite)
			assert.Nil(t, got)
		})
	}
}

func TestMap_Elementwise(t *testing.T) {
	g := mustRows(t, [][]float64{{0, math.Pi / 2}})
	out := Map(g, math.Sin)
	assert.InDeltaSlice(t, []float64{0, 1}, out.Values(), 1e-12)
	assert.Equal(t, []float64{0, math.Pi / 2}, g.Values(), "input must not change")
}

func TestBroadcast(t *testing.T) {
	a := mustRows(t, [][]float64{
		{0, 2, 4, 6},
		{1, 3, 5, 7},
	})

	t.Run("same shape", func(t *testing.T) {
		out, err := Sub(a, a)
		require.NoError(t, err)
		assert.Equal(t, make([]float64, 8), out.Values())
	})

	t.Run("row vector", func(t *testing.T) {
		row := mustRows(t, [][]float64{{10, 20, 30, 40}})
		out, err := Add(a, row)
		require.NoError(t, err)
		assert.Equal(t, []float64{10, 22, 34, 46, 11, 23, 35, 47}, out.Values())
	})

	t.Run("column vector", func(t *testing.T) {
		col := mustRows(t, [][]float64{{2}, {10}})
		out, err := Mul(a, col)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 4, 8, 12, 10, 30, 50, 70}, out.Values())
	})

	t.Run("outer product shape", func(t *testing.T) {
		col := mustRows(t, [][]float64{{1}, {2}, {3}})
		row := mustRows(t, [][]float64{{1, 2}})
		out, err := Div(col, row)
		require.NoError(t, err)
		assert.Equal(t, 3, out.Rows)
		assert.Equal(t, 2, out.Cols)
		assert.Equal(t, []float64{1, 0.5, 2, 1, 3, 1.5}, out.Values())
	})

	t.Run("incompatible", func(t *testing.T) {
		_, err := Add(a, Filled(3, 4, 1))
		require.ErrorIs(t, err, ErrShapeMismatch)
	})

	t.Run("scalar", func(t *testing.T) {
		assert.Equal(t, []float64{1, 3, 5, 7, 2, 4, 6, 8}, AddScalar(a, 1).Values())
	})
}

func TestGrid_Construction(t *testing.T) {
	_, err := FromRows([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = Reshape([]float64{1, 2, 3}, 2, 2)
	require.ErrorIs(t, err, ErrShapeMismatch)

	g, err := Reshape([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 6.0, g.At(1, 2))

	d, err := g.Dense()
	require.NoError(t, err)
	assert.Equal(t, g, FromDense(d))

	_, err = NewGrid(0, 4).Dense()
	require.ErrorIs(t, err, ErrEmptyGrid)
}
