package dct

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/jfifcore-cli/internal/block"
)

func constant(v int8) *block.Shifted {
	var s block.Shifted
	for i := range s {
		s[i] = v
	}
	return &s
}

func TestForward_ConstantBlockDC(t *testing.T) {
	for _, v := range []int8{-128, -57, -1, 0, 1, 5, 64, 127} {
		out := Forward(constant(v))
		assert.Equal(t, 8*float64(v), out[0], "DC for %d", v)
		for i := 1; i < block.Len; i++ {
			require.InDelta(t, 0, out[i], 1e-9, "AC[%d] for %d", i, v)
		}
		ints := ToInts(out, Truncate)
		assert.Equal(t, int32(8)*int32(v), ints[0])
		for i := 1; i < block.Len; i++ {
			require.Zero(t, ints[i], "truncated AC[%d] for %d", i, v)
		}
	}
}

func TestForward_ZeroBlock(t *testing.T) {
	out := Forward(constant(0))
	for i, c := range out {
		require.Zero(t, c, "coefficient %d", i)
	}
}

func TestForward_HorizontalCosine(t *testing.T) {
	// A pure horizontal cosine at u=1 has energy only in F(1,0).
	var s block.Shifted
	for y := 0; y < block.Size; y++ {
		for x := 0; x < block.Size; x++ {
			s[y*block.Size+x] = int8(math.Round(100 * math.Cos(float64(2*x+1)*math.Pi/16)))
		}
	}
	out := Forward(&s)
	assert.Greater(t, math.Abs(out.At(0, 1)), 300.0)
	assert.InDelta(t, 0, out.At(1, 0), 1e-9, "vertical term must vanish")
	for i, c := range out {
		if i == 1 {
			continue
		}
		assert.Less(t, math.Abs(c), 5.0, "leakage into %d", i)
	}
}

func TestForward_Orthonormal(t *testing.T) {
	// Parseval: the transform preserves energy.
	var s block.Shifted
	for i := range s {
		s[i] = int8((i*37)%255 - 127)
	}
	out := Forward(&s)
	var inE, outE float64
	for i := range s {
		inE += float64(s[i]) * float64(s[i])
		outE += out[i] * out[i]
	}
	assert.InEpsilon(t, inE, outE, 1e-9)
}

func TestToInts_Rounding(t *testing.T) {
	var c block.Coeffs
	c[0], c[1], c[2], c[3], c[4] = 2.7, -2.7, 0.5, -0.5, 3.2

	tr := ToInts(&c, Truncate)
	assert.Equal(t, []int32{2, -2, 0, 0, 3}, tr[:5])

	nr := ToInts(&c, Nearest)
	assert.Equal(t, []int32{3, -3, 1, -1, 3}, nr[:5])
}
