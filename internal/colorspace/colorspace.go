// Package colorspace converts RGB blocks to JFIF luma/chroma and re-centers
// samples around zero for the frequency transform.
//
// The forward transform runs in 16.16 fixed point. Each coefficient row is
// rounded so that it sums exactly like the real-valued matrix (1 for Y, 0 for
// Cb and Cr), which keeps neutral grays exact: R=G=B=v gives Y=v, Cb=Cr=128.
package colorspace

import (
	"math"

	"github.com/AnyUserName/jfifcore-cli/internal/block"
)

// Rounding selects how fixed-point results are narrowed to 8-bit samples.
type Rounding int

const (
	// Truncate drops the fractional part of the fixed-point result. Neutral
	// grays stay exact. On some saturated triples it lands one below a
	// truncated real-valued product, e.g. (0,2,209) gives Y=24, not 25.
	Truncate Rounding = iota
	// Nearest rounds half up.
	Nearest
)

func (r Rounding) String() string {
	if r == Nearest {
		return "nearest"
	}
	return "truncate"
}

const (
	fixBits   = 16
	fixHalf   = 1 << (fixBits - 1)
	chromaOff = 128 << fixBits
)

// Fixed-point coefficients (value * 65536).
//
//	Y  =  0.299 R  + 0.587 G  + 0.114 B
//	Cb = -0.1687 R - 0.3313 G + 0.5 B    + 128
//	Cr =  0.5 R    - 0.4187 G - 0.0813 B + 128
const (
	yR, yG, yB    = 19595, 38470, 7471
	cbR, cbG, cbB = -11056, -21712, 32768
	crR, crG, crB = 32768, -27440, -5328
)

// Per-sample product tables, filled at init.
var (
	lutYR, lutYG, lutYB    [256]int32
	lutCbR, lutCbG, lutCbB [256]int32
	lutCrR, lutCrG, lutCrB [256]int32
)

func init() {
	for i := int32(0); i < 256; i++ {
		lutYR[i], lutYG[i], lutYB[i] = yR*i, yG*i, yB*i
		lutCbR[i], lutCbG[i], lutCbB[i] = cbR*i, cbG*i, cbB*i
		lutCrR[i], lutCrG[i], lutCrB[i] = crR*i, crG*i, crB*i
	}
}

// ToYCbCr converts every sample of an RGB block. Results are clamped to [0, 255].
func ToYCbCr(in *block.RGB, rounding Rounding) *block.YCbCr {
	var bias int32
	if rounding == Nearest {
		bias = fixHalf
	}
	var out block.YCbCr
	for i := 0; i < block.Len; i++ {
		r, g, b := in[0][i], in[1][i], in[2][i]
		out[0][i] = narrow(lutYR[r] + lutYG[g] + lutYB[b] + bias)
		out[1][i] = narrow(lutCbR[r] + lutCbG[g] + lutCbB[b] + chromaOff + bias)
		out[2][i] = narrow(lutCrR[r] + lutCrG[g] + lutCrB[b] + chromaOff + bias)
	}
	return &out
}

// PixelToYCbCr converts a single RGB triple.
func PixelToYCbCr(r, g, b uint8, rounding Rounding) (y, cb, cr uint8) {
	var bias int32
	if rounding == Nearest {
		bias = fixHalf
	}
	y = narrow(lutYR[r] + lutYG[g] + lutYB[b] + bias)
	cb = narrow(lutCbR[r] + lutCbG[g] + lutCbB[b] + chromaOff + bias)
	cr = narrow(lutCrR[r] + lutCrG[g] + lutCrB[b] + chromaOff + bias)
	return y, cb, cr
}

func narrow(v int32) uint8 {
	v >>= fixBits
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// PixelToRGB applies the standard JFIF inverse to one sample triple.
func PixelToRGB(y, cb, cr uint8) (r, g, b uint8) {
	yf := float64(y)
	cbf := float64(cb) - 128
	crf := float64(cr) - 128
	r = clampRound(yf + 1.402*crf)
	g = clampRound(yf - 0.344136*cbf - 0.714136*crf)
	b = clampRound(yf + 1.772*cbf)
	return r, g, b
}

// ToRGB converts a luma/chroma block back to RGB.
func ToRGB(in *block.YCbCr) *block.RGB {
	var out block.RGB
	for i := 0; i < block.Len; i++ {
		out[0][i], out[1][i], out[2][i] = PixelToRGB(in[0][i], in[1][i], in[2][i])
	}
	return &out
}

func clampRound(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// LevelShift maps one channel from [0, 255] to [-128, 127].
func LevelShift(in *block.Plane) *block.Shifted {
	var out block.Shifted
	for i, v := range in {
		out[i] = int8(int(v) - 128)
	}
	return &out
}

// LevelShiftAll shifts the three channels of a luma/chroma block.
func LevelShiftAll(in *block.YCbCr) [block.Channels]*block.Shifted {
	var out [block.Channels]*block.Shifted
	for c := range in {
		out[c] = LevelShift(&in[c])
	}
	return out
}
