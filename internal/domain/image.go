package domain

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	// Register decoders for image.Decode.
	_ "image/jpeg"

	"gonum.org/v1/gonum/floats"
)

// Image is a stack of same-shaped channels with intensities in [0, 1]:
// one channel for grayscale, three for opaque colour (R, G, B), four when
// the alpha channel carries information.
type Image struct {
	Channels []Grid
}

// Rows returns the pixel height.
func (img Image) Rows() int {
	if len(img.Channels) == 0 {
		return 0
	}
	return img.Channels[0].Rows
}

// Cols returns the pixel width.
func (img Image) Cols() int {
	if len(img.Channels) == 0 {
		return 0
	}
	return img.Channels[0].Cols
}

// Empty reports whether the image has no pixels.
func (img Image) Empty() bool { return img.Rows() == 0 || img.Cols() == 0 }

// DecodeImage reads a PNG or JPEG image into normalised float channels.
func DecodeImage(r io.Reader) (Image, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}
	img := FromImage(src)
	if img.Empty() {
		return Image{}, fmt.Errorf("decode %s image: %w", format, ErrEmptyGrid)
	}
	return img, nil
}

// FromImage converts a decoded image into channels.
func FromImage(src image.Image) Image {
	b := src.Bounds()
	rows, cols := b.Dy(), b.Dx()

	switch src.(type) {
	case *image.Gray, *image.Gray16:
		g := NewGrid(rows, cols)
		for y := 0; y < rows; y++ {
			row := g.Row(y)
			for x := 0; x < cols; x++ {
				c := color.Gray16Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
				row[x] = float64(c.Y) / 0xffff
			}
		}
		return Image{Channels: []Grid{g}}
	}

	n := 3
	if o, ok := src.(interface{ Opaque() bool }); ok && !o.Opaque() {
		n = 4
	}
	chans := make([]Grid, n)
	for k := range chans {
		chans[k] = NewGrid(rows, cols)
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			// Non-premultiplied, to match what is stored in the file.
			c := color.NRGBA64Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			vals := [4]uint16{c.R, c.G, c.B, c.A}
			for k := range chans {
				chans[k].Row(y)[x] = float64(vals[k]) / 0xffff
			}
		}
	}
	return Image{Channels: chans}
}

// SmoothImage applies Smooth to every channel.
func SmoothImage(img Image) Image {
	return mapChannels(img, Smooth)
}

// RefilterImage applies Refilter to every channel.
func RefilterImage(img Image, n int) Image {
	return mapChannels(img, func(g Grid) Grid { return Refilter(g, n) })
}

// DifferenceImage applies Difference channel by channel.
func DifferenceImage(smoothed, original Image, n int) (Image, error) {
	if len(smoothed.Channels) != len(original.Channels) {
		return Image{}, fmt.Errorf("difference of %d vs %d channels: %w",
			len(smoothed.Channels), len(original.Channels), ErrShapeMismatch)
	}
	out := Image{Channels: make([]Grid, len(smoothed.Channels))}
	for k := range smoothed.Channels {
		d, err := Difference(smoothed.Channels[k], original.Channels[k], n)
		if err != nil {
			return Image{}, fmt.Errorf("channel %d: %w", k, err)
		}
		out.Channels[k] = d
	}
	return out, nil
}

// Describe returns summary statistics over every channel's pixels.
func (img Image) Describe() (Stats, error) {
	if img.Empty() {
		return Stats{}, ErrEmptyGrid
	}
	all := make([]float64, 0, img.Rows()*img.Cols()*len(img.Channels))
	for _, ch := range img.Channels {
		all = append(all, ch.data...)
	}
	return describe(all), nil
}

// Fingerprint hashes the channel count, shape and every pixel value, so two
// images share a fingerprint only when their contents are identical.
func (img Image) Fingerprint() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:]) //nolint:errcheck // hash writes do not fail
	}
	put(uint64(len(img.Channels)))
	for _, ch := range img.Channels {
		put(uint64(ch.Rows))
		put(uint64(ch.Cols))
		for _, v := range ch.data {
			put(math.Float64bits(v))
		}
	}
	return h.Sum64()
}

func mapChannels(img Image, fn func(Grid) Grid) Image {
	out := Image{Channels: make([]Grid, len(img.Channels))}
	for k, ch := range img.Channels {
		out.Channels[k] = fn(ch)
	}
	return out
}

// EncodeGrayPNG writes g as an 8-bit grayscale PNG, stretching the grid's
// value range onto 0..255. A constant grid encodes as mid-gray.
func EncodeGrayPNG(w io.Writer, g Grid) error {
	if g.Empty() {
		return fmt.Errorf("encode png: %w", ErrEmptyGrid)
	}
	lo, hi := floats.Min(g.data), floats.Max(g.data)
	span := hi - lo

	dst := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	for y := 0; y < g.Rows; y++ {
		row := g.Row(y)
		for x, v := range row {
			level := 0.5
			if span > 0 {
				level = (v - lo) / span
			}
			dst.SetGray(x, y, color.Gray{Y: uint8(level*255 + 0.5)})
		}
	}
	return png.Encode(w, dst)
}
