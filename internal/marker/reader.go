package marker

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Segment is one marker found in a stream. Payload excludes the marker code
// and the length field; it is nil for SOI and EOI.
type Segment struct {
	Code    byte
	Offset  int
	Payload []byte
}

// Header is the decoded structure of a JFIF marker skeleton.
type Header struct {
	Segments []Segment
	JFIF     *JFIF
	Tables   map[uint8]QuantTable
	Frame    *Frame
	HasEOI   bool
}

// Parse splits data into marker segments. It stops after EOI and rejects
// SOS, since scan data cannot be walked without entropy decoding.
func Parse(data []byte) ([]Segment, error) {
	if len(data) < 2 || data[0] != Prefix || data[1] != SOI {
		return nil, fmt.Errorf("%w: missing SOI", ErrMalformed)
	}
	segs := []Segment{{Code: SOI}}
	pos := 2
	for pos < len(data) {
		if data[pos] != Prefix {
			return segs, fmt.Errorf("%w: expected marker at offset %d, got 0x%02X", ErrMalformed, pos, data[pos])
		}
		start := pos
		for pos < len(data) && data[pos] == Prefix {
			pos++
		}
		if pos >= len(data) {
			return segs, fmt.Errorf("%w: truncated marker at offset %d", ErrMalformed, start)
		}
		code := data[pos]
		pos++
		switch {
		case code == EOI:
			segs = append(segs, Segment{Code: EOI, Offset: start})
			return segs, nil
		case code == SOI:
			return segs, fmt.Errorf("%w: nested SOI at offset %d", ErrMalformed, start)
		case code == SOS:
			return segs, fmt.Errorf("%w: scan data at offset %d is not supported", ErrMalformed, start)
		case code >= 0xD0 && code <= 0xD7:
			segs = append(segs, Segment{Code: code, Offset: start})
			continue
		}
		if pos+2 > len(data) {
			return segs, fmt.Errorf("%w: truncated %s length", ErrMalformed, Name(code))
		}
		segLen := int(binary.BigEndian.Uint16(data[pos:]))
		if segLen < 2 || pos+segLen > len(data) {
			return segs, fmt.Errorf("%w: %s length %d", ErrMalformed, Name(code), segLen)
		}
		segs = append(segs, Segment{Code: code, Offset: start, Payload: data[pos+2 : pos+segLen]})
		pos += segLen
	}
	return segs, nil
}

// Decode parses data and interprets its APP0, DQT and SOF0 segments.
func Decode(data []byte) (*Header, error) {
	segs, err := Parse(data)
	if err != nil {
		return nil, err
	}
	h := &Header{Segments: segs, Tables: make(map[uint8]QuantTable)}
	for _, s := range segs {
		switch s.Code {
		case APP0:
			if !bytes.HasPrefix(s.Payload, jfifIdent) {
				continue
			}
			j, err := ParseAPP0(s.Payload)
			if err != nil {
				return nil, err
			}
			h.JFIF = &j
		case DQT:
			tables, err := ParseDQT(s.Payload)
			if err != nil {
				return nil, err
			}
			for _, t := range tables {
				h.Tables[t.ID] = t
			}
		case SOF0:
			f, err := ParseSOF0(s.Payload)
			if err != nil {
				return nil, err
			}
			h.Frame = &f
		case EOI:
			h.HasEOI = true
		}
	}
	if h.Frame != nil {
		for _, c := range h.Frame.Components {
			if _, ok := h.Tables[c.TableID]; !ok {
				return nil, fmt.Errorf("%w: component %d references undefined table %d", ErrMalformed, c.ID, c.TableID)
			}
		}
	}
	return h, nil
}

// ParseAPP0 decodes a JFIF APP0 payload.
func ParseAPP0(p []byte) (JFIF, error) {
	if len(p) < app0Len-2 || !bytes.HasPrefix(p, jfifIdent) {
		return JFIF{}, fmt.Errorf("%w: APP0 is not JFIF", ErrMalformed)
	}
	p = p[len(jfifIdent):]
	return JFIF{
		VersionMajor: p[0],
		VersionMinor: p[1],
		Units:        DensityUnit(p[2]),
		XDensity:     binary.BigEndian.Uint16(p[3:5]),
		YDensity:     binary.BigEndian.Uint16(p[5:7]),
		ThumbWidth:   p[7],
		ThumbHeight:  p[8],
	}, nil
}

// ParseDQT decodes every table record of a DQT payload.
func ParseDQT(p []byte) ([]QuantTable, error) {
	var tables []QuantTable
	for len(p) > 0 {
		precision, id := p[0]>>4, p[0]&0x0F
		p = p[1:]
		if precision != 0 {
			return nil, fmt.Errorf("%w: DQT precision %d is not baseline", ErrMalformed, precision)
		}
		if id > 3 {
			return nil, fmt.Errorf("%w: DQT table id %d", ErrMalformed, id)
		}
		if len(p) < 64 {
			return nil, fmt.Errorf("%w: truncated DQT table %d", ErrMalformed, id)
		}
		tables = append(tables, QuantTable{Precision: precision, ID: id, Data: p[:64]})
		p = p[64:]
	}
	return tables, nil
}

// ParseSOF0 decodes a baseline frame header payload.
func ParseSOF0(p []byte) (Frame, error) {
	if len(p) < 6 {
		return Frame{}, fmt.Errorf("%w: SOF0 too short", ErrMalformed)
	}
	f := Frame{
		Precision: p[0],
		Height:    int(binary.BigEndian.Uint16(p[1:3])),
		Width:     int(binary.BigEndian.Uint16(p[3:5])),
	}
	n := int(p[5])
	if len(p) != 6+3*n {
		return Frame{}, fmt.Errorf("%w: SOF0 length %d for %d components", ErrMalformed, len(p)+2, n)
	}
	for i := 0; i < n; i++ {
		rec := p[6+3*i:]
		f.Components = append(f.Components, Component{
			ID:      rec[0],
			H:       rec[1] >> 4,
			V:       rec[1] & 0x0F,
			TableID: rec[2],
		})
	}
	return f, nil
}
