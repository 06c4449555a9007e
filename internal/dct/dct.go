// Package dct implements the forward 8×8 type-II discrete cosine transform
// used by baseline JPEG, in its direct (non-factored) form:
//
//	F(u,v) = 1/4 C(u) C(v) Σx Σy f(x,y) cos((2x+1)uπ/16) cos((2y+1)vπ/16)
//
// with C(0) = 1/√2 and C(k) = 1 otherwise. u indexes the output column and
// v the output row.
package dct

import (
	"math"

	"github.com/AnyUserName/jfifcore-cli/internal/block"
)

// Rounding selects how real coefficients are narrowed to integers.
type Rounding int

const (
	// Truncate rounds toward zero, matching an implicit narrowing conversion.
	Truncate Rounding = iota
	// Nearest rounds half away from zero.
	Nearest
)

func (r Rounding) String() string {
	if r == Nearest {
		return "nearest"
	}
	return "truncate"
}

// cosTab[x][u] = cos((2x+1)uπ/16).
var cosTab [block.Size][block.Size]float64

// scale[v][u] = 1/4 C(u) C(v), with the DC entry written out exactly.
var scale [block.Size][block.Size]float64

func init() {
	for x := 0; x < block.Size; x++ {
		for u := 0; u < block.Size; u++ {
			if u == 0 {
				cosTab[x][u] = 1
				continue
			}
			cosTab[x][u] = math.Cos(float64((2*x+1)*u) * math.Pi / 16)
		}
	}
	for v := 0; v < block.Size; v++ {
		for u := 0; u < block.Size; u++ {
			switch {
			case u == 0 && v == 0:
				scale[v][u] = 0.125
			case u == 0 || v == 0:
				scale[v][u] = 0.25 / math.Sqrt2
			default:
				scale[v][u] = 0.25
			}
		}
	}
}

// Forward transforms one level-shifted channel. The result is in spatial
// order: out[v*8+u] holds F(u,v).
func Forward(in *block.Shifted) *block.Coeffs {
	var out block.Coeffs
	for v := 0; v < block.Size; v++ {
		for u := 0; u < block.Size; u++ {
			var sum float64
			for y := 0; y < block.Size; y++ {
				cy := cosTab[y][v]
				row := in[y*block.Size : (y+1)*block.Size]
				for x := 0; x < block.Size; x++ {
					sum += float64(row[x]) * cosTab[x][u] * cy
				}
			}
			out[v*block.Size+u] = sum * scale[v][u]
		}
	}
	return &out
}

// ToInts narrows real coefficients according to the rounding policy.
func ToInts(in *block.Coeffs, rounding Rounding) *block.Ints {
	var out block.Ints
	for i, c := range in {
		if rounding == Nearest {
			c = math.Round(c)
		}
		out[i] = int32(c)
	}
	return &out
}
