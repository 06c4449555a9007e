package marker

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/jfifcore-cli/internal/quant"
)

func uniform(t *testing.T, step int) *quant.Table {
	t.Helper()
	tbl, err := quant.Uniform(step)
	require.NoError(t, err)
	return tbl
}

func TestWriteSOIEOI(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteSOI())
	require.NoError(t, w.WriteEOI())
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF, 0xD9}, buf.Bytes())
	assert.Equal(t, int64(4), w.Written())
}

func TestWriteAPP0(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteAPP0(DefaultJFIF))
	want := []byte{
		0xFF, 0xE0, 0x00, 0x10,
		'J', 'F', 'I', 'F', 0x00,
		0x01, 0x01,
		0x00, 0x00, 0x01, 0x00, 0x01,
		0x00, 0x00,
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestWriteAPP0_DPI(t *testing.T) {
	var buf bytes.Buffer
	j := JFIF{VersionMajor: 1, VersionMinor: 2, Units: DensityDPI, XDensity: 300, YDensity: 0x0102}
	require.NoError(t, NewWriter(&buf).WriteAPP0(j))
	out := buf.Bytes()
	assert.Equal(t, []byte{0x01, 0x02, 0x01}, out[9:12])
	assert.Equal(t, []byte{0x01, 0x2C, 0x01, 0x02}, out[12:16])
}

func TestWriteAPP0_RejectsThumbnail(t *testing.T) {
	var buf bytes.Buffer
	j := DefaultJFIF
	j.ThumbWidth = 4
	err := NewWriter(&buf).WriteAPP0(j)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Zero(t, buf.Len())
}

func TestWriteDQT_AssignsIncreasingIDs(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	id0, err := w.WriteDQT(uniform(t, 16))
	require.NoError(t, err)
	id1, err := w.WriteDQT(uniform(t, 17))
	require.NoError(t, err)
	assert.Equal(t, uint8(0), id0)
	assert.Equal(t, uint8(1), id1)
	assert.Equal(t, 2, w.TablesDefined())

	out := buf.Bytes()
	require.Len(t, out, 2*69)
	assert.Equal(t, []byte{0xFF, 0xDB, 0x00, 0x43, 0x00}, out[:5])
	assert.Equal(t, bytes.Repeat([]byte{16}, 64), out[5:69])
	assert.Equal(t, []byte{0xFF, 0xDB, 0x00, 0x43, 0x01}, out[69:74])
	assert.Equal(t, bytes.Repeat([]byte{17}, 64), out[74:])
}

func TestWriteDQT_Limit(t *testing.T) {
	w := NewWriter(io.Discard)
	for i := 0; i < 4; i++ {
		_, err := w.WriteDQT(uniform(t, 1))
		require.NoError(t, err)
	}
	_, err := w.WriteDQT(uniform(t, 1))
	assert.ErrorIs(t, err, ErrMalformed)
}

func threeComponents() []Component {
	return []Component{
		{ID: 1, H: 1, V: 1, TableID: 0},
		{ID: 2, H: 1, V: 1, TableID: 1},
		{ID: 3, H: 1, V: 1, TableID: 1},
	}
}

func TestAppendDQT_Validation(t *testing.T) {
	full := bytes.Repeat([]byte{1}, 64)
	seg, err := AppendDQT(nil, QuantTable{ID: 2, Data: full})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xDB, 0x00, 0x43, 0x02}, seg[:5])
	assert.Len(t, seg, 2+67)

	for name, tbl := range map[string]QuantTable{
		"short":      {Data: full[:63]},
		"long":       {Data: append(append([]byte(nil), full...), 1)},
		"empty":      {},
		"16-bit":     {Precision: 1, Data: full},
		"id too big": {ID: 4, Data: full},
	} {
		out, err := AppendDQT([]byte{0xAA}, tbl)
		assert.ErrorIs(t, err, ErrMalformed, name)
		assert.Equal(t, []byte{0xAA}, out, name)
	}
}

func TestWriteSOF0(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_, err := w.WriteDQT(uniform(t, 1))
	require.NoError(t, err)
	_, err = w.WriteDQT(uniform(t, 1))
	require.NoError(t, err)
	buf.Reset()

	require.NoError(t, w.WriteSOF0(Frame{Precision: 8, Height: 0x0120, Width: 0x0340, Components: threeComponents()}))
	want := []byte{
		0xFF, 0xC0, 0x00, 0x11,
		0x08,
		0x01, 0x20,
		0x03, 0x40,
		0x03,
		0x01, 0x11, 0x00,
		0x02, 0x11, 0x01,
		0x03, 0x11, 0x01,
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestWriteSOF0_Validation(t *testing.T) {
	w := NewWriter(io.Discard)
	_, err := w.WriteDQT(uniform(t, 1))
	require.NoError(t, err)

	for _, tc := range []struct {
		name string
		f    Frame
	}{
		{"undefined table", Frame{Precision: 8, Height: 8, Width: 8, Components: threeComponents()}},
		{"zero width", Frame{Precision: 8, Height: 8, Width: 0, Components: threeComponents()[:1]}},
		{"too tall", Frame{Precision: 8, Height: 70000, Width: 8, Components: threeComponents()[:1]}},
		{"precision", Frame{Precision: 12, Height: 8, Width: 8, Components: threeComponents()[:1]}},
		{"two components", Frame{Precision: 8, Height: 8, Width: 8, Components: threeComponents()[:2]}},
		{"sampling", Frame{Precision: 8, Height: 8, Width: 8, Components: []Component{{ID: 1, H: 5, V: 1}}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, w.WriteSOF0(tc.f), ErrMalformed)
		})
	}
}

// failAfter accepts limit bytes and then fails.
type failAfter struct {
	limit int
	buf   bytes.Buffer
}

var errSinkFull = errors.New("sink full")

func (f *failAfter) Write(p []byte) (int, error) {
	room := f.limit - f.buf.Len()
	if room >= len(p) {
		return f.buf.Write(p)
	}
	if room > 0 {
		f.buf.Write(p[:room])
		return room, errSinkFull
	}
	return 0, errSinkFull
}

func TestWriter_PropagatesSinkErrors(t *testing.T) {
	sink := &failAfter{limit: 10}
	w := NewWriter(sink)
	require.NoError(t, w.WriteSOI())
	err := w.WriteAPP0(DefaultJFIF)
	require.ErrorIs(t, err, errSinkFull)
	assert.Contains(t, err.Error(), "APP0")
	// Partial output stays in the sink.
	assert.Equal(t, 10, sink.buf.Len())
	assert.Equal(t, int64(10), w.Written())

	_, err = w.WriteDQT(uniform(t, 2))
	require.ErrorIs(t, err, errSinkFull)
	assert.Equal(t, 0, w.TablesDefined())
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) / 2, nil }

func TestWriter_ShortWrite(t *testing.T) {
	err := NewWriter(shortWriter{}).WriteEOI()
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestWriter_ConcurrentSegmentsDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteSOI())

	tables := make([]*quant.Table, 4)
	for i := range tables {
		tables[i] = uniform(t, i+1)
	}
	var wg sync.WaitGroup
	errs := make([]error, len(tables))
	for i, tbl := range tables {
		wg.Add(1)
		go func(i int, tbl *quant.Table) {
			defer wg.Done()
			_, errs[i] = w.WriteDQT(tbl)
		}(i, tbl)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteEOI())

	h, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, h.Tables, 4)
	seen := map[byte]bool{}
	for id, tbl := range h.Tables {
		step := tbl.Data[0]
		assert.Equal(t, bytes.Repeat([]byte{step}, 64), tbl.Data, "table %d", id)
		seen[step] = true
	}
	assert.Len(t, seen, 4)
	assert.True(t, h.HasEOI)
}

func TestDecode_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteSOI())
	require.NoError(t, w.WriteAPP0(DefaultJFIF))
	luma, chroma := quant.Standard(quant.Luma), quant.Standard(quant.Chroma)
	_, err := w.WriteDQT(luma)
	require.NoError(t, err)
	_, err = w.WriteDQT(chroma)
	require.NoError(t, err)
	frame := Frame{Precision: 8, Height: 16, Width: 24, Components: threeComponents()}
	require.NoError(t, w.WriteSOF0(frame))
	require.NoError(t, w.WriteEOI())

	h, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.NotNil(t, h.JFIF)
	assert.Equal(t, DefaultJFIF, *h.JFIF)
	require.NotNil(t, h.Frame)
	assert.Equal(t, frame, *h.Frame)
	assert.Equal(t, luma.Bytes(), h.Tables[0].Data)
	assert.Equal(t, chroma.Bytes(), h.Tables[1].Data)

	var names []string
	for _, s := range h.Segments {
		names = append(names, Name(s.Code))
	}
	assert.Equal(t, []string{"SOI", "APP0", "DQT", "DQT", "SOF0", "EOI"}, names)
}

func TestParse_Malformed(t *testing.T) {
	for _, tc := range []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"no SOI", []byte{0xFF, 0xD9}},
		{"garbage", []byte{0xFF, 0xD8, 0x12}},
		{"truncated length", []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00}},
		{"length overrun", []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x43, 0x00}},
		{"scan", []byte{0xFF, 0xD8, 0xFF, 0xDA, 0x00, 0x02}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.data)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecode_UndefinedTable(t *testing.T) {
	sof, err := AppendSOF0([]byte{0xFF, 0xD8}, Frame{Precision: 8, Height: 8, Width: 8, Components: threeComponents()})
	require.NoError(t, err)
	_, err = Decode(append(sof, 0xFF, 0xD9))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestName(t *testing.T) {
	assert.Equal(t, "APP0", Name(0xE0))
	assert.Equal(t, "APP14", Name(0xEE))
	assert.Equal(t, "RST3", Name(0xD3))
	assert.Equal(t, "0x01", Name(0x01))
}
