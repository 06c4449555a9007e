// Package block defines the fixed 8×8 sample and coefficient grids that flow
// through the transform stages. Every grid is row-major: index = row*8 + col.
package block

import (
	"errors"
	"fmt"
)

const (
	// Size is the edge length of a block.
	Size = 8
	// Len is the number of samples in one channel of a block.
	Len = Size * Size
	// Channels is the number of color channels per processing unit.
	Channels = 3
)

// ErrInvalidInput reports input that is not exactly 64 samples per channel.
var ErrInvalidInput = errors.New("block: invalid input")

// Plane is one channel of unsigned 8-bit samples.
type Plane [Len]uint8

// At returns the sample at (row, col).
func (p *Plane) At(row, col int) uint8 { return p[row*Size+col] }

// RGB is one 8×8×3 unit of RGB samples, channels in R, G, B order.
type RGB [Channels]Plane

// YCbCr is one 8×8×3 unit of luma/chroma samples, channels in Y, Cb, Cr order.
type YCbCr [Channels]Plane

// Shifted is one channel of level-shifted samples in [-128, 127].
type Shifted [Len]int8

// Coeffs is one channel of real-valued transform coefficients in spatial order.
type Coeffs [Len]float64

// At returns the coefficient at (row, col).
func (c *Coeffs) At(row, col int) float64 { return c[row*Size+col] }

// Ints is one channel of integer coefficients in spatial order.
type Ints [Len]int32

// Scan is one channel of integer coefficients in zig-zag scan order.
type Scan [Len]int32

// NewRGB builds an RGB unit from three row-major planes.
func NewRGB(r, g, b []uint8) (*RGB, error) {
	var out RGB
	for c, src := range [Channels][]uint8{r, g, b} {
		if len(src) != Len {
			return nil, fmt.Errorf("%w: channel %d has %d samples, want %d", ErrInvalidInput, c, len(src), Len)
		}
		copy(out[c][:], src)
	}
	return &out, nil
}

// Fill returns an RGB unit where every pixel has the given color.
func Fill(r, g, b uint8) *RGB {
	var out RGB
	for i := 0; i < Len; i++ {
		out[0][i], out[1][i], out[2][i] = r, g, b
	}
	return &out
}
