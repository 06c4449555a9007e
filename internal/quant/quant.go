// Package quant holds validated quantization tables and the block quantizer.
// Tables are indexed by zig-zag scan position and are immutable once built.
package quant

import (
	"errors"
	"fmt"

	"github.com/AnyUserName/jfifcore-cli/internal/block"
)

// ErrInvalidTable reports a table with the wrong size or an entry outside [1, 255].
var ErrInvalidTable = errors.New("quant: invalid table")

// Class selects which table a channel uses.
type Class int

const (
	Luma Class = iota
	Chroma
)

func (c Class) String() string {
	if c == Chroma {
		return "chroma"
	}
	return "luma"
}

// ClassOf returns the table class for channel index c (0=Y, 1=Cb, 2=Cr).
func ClassOf(c int) Class {
	if c == 0 {
		return Luma
	}
	return Chroma
}

// Table is 64 positive step sizes in zig-zag order.
type Table struct {
	steps [block.Len]uint8
}

// NewTable validates steps and builds a table. Entries must lie in [1, 255]
// so the table fits an 8-bit DQT segment.
func NewTable(steps []int) (*Table, error) {
	if len(steps) != block.Len {
		return nil, fmt.Errorf("%w: %d entries, want %d", ErrInvalidTable, len(steps), block.Len)
	}
	var t Table
	for k, s := range steps {
		if s < 1 || s > 255 {
			return nil, fmt.Errorf("%w: entry %d is %d", ErrInvalidTable, k, s)
		}
		t.steps[k] = uint8(s)
	}
	return &t, nil
}

// MustTable is NewTable for tables known to be valid at compile time.
func MustTable(steps []int) *Table {
	t, err := NewTable(steps)
	if err != nil {
		panic(err)
	}
	return t
}

// Step returns the divisor at scan position k.
func (t *Table) Step(k int) int { return int(t.steps[k]) }

// Bytes returns the 64 table entries in zig-zag order, as written to DQT.
func (t *Table) Bytes() []byte {
	out := make([]byte, block.Len)
	copy(out, t.steps[:])
	return out
}

// Ints returns a copy of the entries.
func (t *Table) Ints() []int {
	out := make([]int, block.Len)
	for k, s := range t.steps {
		out[k] = int(s)
	}
	return out
}

// Quantize divides each scan-ordered coefficient by the matching table
// entry, truncating toward zero.
func Quantize(in *block.Scan, t *Table) *block.Scan {
	var out block.Scan
	for k, c := range in {
		out[k] = c / int32(t.steps[k])
	}
	return &out
}
