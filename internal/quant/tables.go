package quant

import "github.com/AnyUserName/jfifcore-cli/internal/block"

// unscaled are the example tables of ITU T.81 Annex K.1, converted from
// natural to zig-zag order.
var unscaled = [2][block.Len]int{
	// Luminance.
	{
		16, 11, 12, 14, 12, 10, 16, 14,
		13, 14, 18, 17, 16, 19, 24, 40,
		26, 24, 22, 22, 24, 49, 35, 37,
		29, 40, 58, 51, 61, 60, 57, 51,
		56, 55, 64, 72, 92, 78, 64, 68,
		87, 69, 55, 56, 80, 109, 81, 87,
		95, 98, 103, 104, 103, 62, 77, 113,
		121, 112, 100, 120, 92, 101, 103, 99,
	},
	// Chrominance.
	{
		17, 18, 18, 24, 21, 24, 47, 26,
		26, 47, 99, 66, 56, 66, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
	},
}

// DefaultQuality is the quality at which Standard tables are used unscaled.
const DefaultQuality = 50

// Standard returns the unscaled Annex K table for a class.
func Standard(c Class) *Table {
	return MustTable(unscaled[c][:])
}

// Scale derives a table for quality 1..100 from the Annex K table of a
// class, using the libjpeg quality curve. Out-of-range quality is clamped.
func Scale(c Class, quality int) *Table {
	if quality < 1 {
		quality = 1
	} else if quality > 100 {
		quality = 100
	}
	var factor int
	if quality < 50 {
		factor = 5000 / quality
	} else {
		factor = 200 - quality*2
	}
	steps := make([]int, block.Len)
	for k, base := range unscaled[c] {
		s := (base*factor + 50) / 100
		if s < 1 {
			s = 1
		} else if s > 255 {
			s = 255
		}
		steps[k] = s
	}
	return MustTable(steps)
}

// Uniform returns a table where every entry is step.
func Uniform(step int) (*Table, error) {
	steps := make([]int, block.Len)
	for k := range steps {
		steps[k] = step
	}
	return NewTable(steps)
}
