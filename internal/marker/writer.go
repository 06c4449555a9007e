package marker

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/AnyUserName/jfifcore-cli/internal/quant"
)

// Writer appends marker segments to a byte sink. It is safe for concurrent
// use; each segment is written with a single call to the sink so segments
// never interleave. Table ids handed out by WriteDQT start at 0 and
// increment per call.
//
// A failed sink write is returned immediately. Whatever reached the sink
// stays there.
type Writer struct {
	mu        sync.Mutex
	w         io.Writer
	nextTable uint8
	written   int64
}

// NewWriter returns a Writer appending to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Written returns the number of bytes successfully written to the sink.
func (w *Writer) Written() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// TablesDefined returns how many DQT tables have been written.
func (w *Writer) TablesDefined() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return int(w.nextTable)
}

func (w *Writer) emit(name string, seg []byte) error {
	n, err := w.w.Write(seg)
	w.written += int64(n)
	if err == nil && n < len(seg) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// WriteSOI writes the Start-of-Image marker.
func (w *Writer) WriteSOI() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.emit("SOI", []byte{Prefix, SOI})
}

// WriteEOI writes the End-of-Image marker.
func (w *Writer) WriteEOI() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.emit("EOI", []byte{Prefix, EOI})
}

// WriteAPP0 writes a JFIF application segment.
func (w *Writer) WriteAPP0(j JFIF) error {
	seg, err := AppendAPP0(nil, j)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.emit("APP0", seg)
}

// WriteDQT writes one 8-bit quantization table and returns the id it was
// assigned.
func (w *Writer) WriteDQT(t *quant.Table) (uint8, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.nextTable > 3 {
		return 0, fmt.Errorf("%w: baseline allows at most 4 quantization tables", ErrMalformed)
	}
	id := w.nextTable
	seg, err := AppendDQT(nil, QuantTable{ID: id, Data: t.Bytes()})
	if err != nil {
		return 0, err
	}
	if err := w.emit("DQT", seg); err != nil {
		return 0, err
	}
	w.nextTable++
	return id, nil
}

// WriteSOF0 writes a baseline frame header. Every component must reference
// a table already written by WriteDQT.
func (w *Writer) WriteSOF0(f Frame) error {
	seg, err := AppendSOF0(nil, f)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range f.Components {
		if c.TableID >= w.nextTable {
			return fmt.Errorf("%w: component %d references undefined table %d", ErrMalformed, c.ID, c.TableID)
		}
	}
	return w.emit("SOF0", seg)
}

// AppendAPP0 appends an encoded APP0 segment to buf.
func AppendAPP0(buf []byte, j JFIF) ([]byte, error) {
	if j.ThumbWidth != 0 || j.ThumbHeight != 0 {
		return buf, fmt.Errorf("%w: APP0 thumbnails are not supported", ErrMalformed)
	}
	if j.Units > DensityDPCM {
		return buf, fmt.Errorf("%w: APP0 density unit %d", ErrMalformed, j.Units)
	}
	buf = append(buf, Prefix, APP0)
	buf = binary.BigEndian.AppendUint16(buf, app0Len)
	buf = append(buf, jfifIdent...)
	buf = append(buf, j.VersionMajor, j.VersionMinor, byte(j.Units))
	buf = binary.BigEndian.AppendUint16(buf, j.XDensity)
	buf = binary.BigEndian.AppendUint16(buf, j.YDensity)
	buf = append(buf, j.ThumbWidth, j.ThumbHeight)
	return buf, nil
}

// AppendDQT appends a single-table DQT segment to buf. Only 8-bit tables
// of exactly 64 entries are accepted.
func AppendDQT(buf []byte, t QuantTable) ([]byte, error) {
	if t.Precision != 0 {
		return buf, fmt.Errorf("%w: DQT precision %d is not baseline", ErrMalformed, t.Precision)
	}
	if t.ID > 3 {
		return buf, fmt.Errorf("%w: DQT table id %d", ErrMalformed, t.ID)
	}
	if len(t.Data) != 64 {
		return buf, fmt.Errorf("%w: DQT table has %d entries, want 64", ErrMalformed, len(t.Data))
	}
	buf = append(buf, Prefix, DQT)
	buf = binary.BigEndian.AppendUint16(buf, dqtLen)
	buf = append(buf, t.ID)
	return append(buf, t.Data...), nil
}

// AppendSOF0 appends a baseline frame header to buf.
func AppendSOF0(buf []byte, f Frame) ([]byte, error) {
	if f.Width < 1 || f.Width > 0xFFFF || f.Height < 1 || f.Height > 0xFFFF {
		return buf, fmt.Errorf("%w: frame dimensions %dx%d", ErrMalformed, f.Width, f.Height)
	}
	if f.Precision != 8 {
		return buf, fmt.Errorf("%w: baseline precision is 8, got %d", ErrMalformed, f.Precision)
	}
	if n := len(f.Components); n != 1 && n != 3 {
		return buf, fmt.Errorf("%w: %d frame components", ErrMalformed, n)
	}
	for _, c := range f.Components {
		if c.H < 1 || c.H > 4 || c.V < 1 || c.V > 4 {
			return buf, fmt.Errorf("%w: component %d sampling %dx%d", ErrMalformed, c.ID, c.H, c.V)
		}
	}
	buf = append(buf, Prefix, SOF0)
	buf = binary.BigEndian.AppendUint16(buf, uint16(8+3*len(f.Components)))
	buf = append(buf, f.Precision)
	buf = binary.BigEndian.AppendUint16(buf, uint16(f.Height))
	buf = binary.BigEndian.AppendUint16(buf, uint16(f.Width))
	buf = append(buf, byte(len(f.Components)))
	for _, c := range f.Components {
		buf = append(buf, c.ID, c.H<<4|c.V, c.TableID)
	}
	return buf, nil
}
