package quant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/jfifcore-cli/internal/block"
)

func TestNewTable_Validation(t *testing.T) {
	ok := make([]int, block.Len)
	for k := range ok {
		ok[k] = k + 1
	}
	tbl, err := NewTable(ok)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Step(0))
	assert.Equal(t, 64, tbl.Step(63))

	for _, tc := range []struct {
		name  string
		steps []int
	}{
		{"short", ok[:63]},
		{"zero", withEntry(ok, 5, 0)},
		{"negative", withEntry(ok, 10, -3)},
		{"too wide", withEntry(ok, 63, 256)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTable(tc.steps)
			assert.ErrorIs(t, err, ErrInvalidTable)
		})
	}
}

func withEntry(steps []int, k, v int) []int {
	out := append([]int(nil), steps...)
	out[k] = v
	return out
}

func TestTableIsImmutable(t *testing.T) {
	steps := make([]int, block.Len)
	for k := range steps {
		steps[k] = 3
	}
	tbl := MustTable(steps)
	steps[0] = 99
	b := tbl.Bytes()
	b[1] = 99
	assert.Equal(t, 3, tbl.Step(0))
	assert.Equal(t, 3, tbl.Step(1))
}

func TestStandardTables(t *testing.T) {
	luma := Standard(Luma)
	chroma := Standard(Chroma)
	assert.Equal(t, 16, luma.Step(0))
	assert.Equal(t, 11, luma.Step(1))
	assert.Equal(t, 99, luma.Step(63))
	assert.Equal(t, 17, chroma.Step(0))
	assert.Equal(t, 99, chroma.Step(63))
	assert.Equal(t, luma.Ints(), Scale(Luma, DefaultQuality).Ints())
}

func TestScale(t *testing.T) {
	hi := Scale(Luma, 100)
	for k := 0; k < block.Len; k++ {
		require.Equal(t, 1, hi.Step(k))
	}
	lo := Scale(Chroma, 1)
	for k := 0; k < block.Len; k++ {
		require.Equal(t, 255, lo.Step(k))
	}
	q75 := Scale(Luma, 75)
	assert.Equal(t, 8, q75.Step(0))
	assert.Equal(t, Scale(Luma, 1).Ints(), Scale(Luma, -20).Ints())
}

func TestQuantize_Truncates(t *testing.T) {
	tbl, err := Uniform(10)
	require.NoError(t, err)
	var in block.Scan
	in[0], in[1], in[2], in[3] = 1024, -37, 9, -9
	out := Quantize(&in, tbl)
	assert.Equal(t, []int32{102, -3, 0, 0}, out[:4])
}

func TestQuantize_ZeroInput(t *testing.T) {
	var in block.Scan
	for _, tbl := range []*Table{Standard(Luma), Standard(Chroma), Scale(Luma, 97)} {
		assert.Equal(t, block.Scan{}, *Quantize(&in, tbl))
	}
}

func TestQuantize_MonotonicInStep(t *testing.T) {
	abs := func(v int32) int32 {
		if v < 0 {
			return -v
		}
		return v
	}
	for _, c := range []int32{-1024, -333, -17, -1, 0, 1, 42, 500, 1016} {
		prev := int32(1 << 30)
		for step := 1; step <= 255; step++ {
			tbl, err := Uniform(step)
			require.NoError(t, err)
			var in block.Scan
			in[7] = c
			got := abs(Quantize(&in, tbl)[7])
			require.LessOrEqual(t, got, prev, "coefficient %d step %d", c, step)
			prev = got
		}
	}
}
