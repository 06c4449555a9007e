// Package marker reads and writes the structural JPEG marker segments of a
// baseline JFIF stream: SOI, APP0, DQT, SOF0 and EOI.
package marker

import (
	"errors"
	"fmt"
)

// Marker codes (second byte; every marker is prefixed with 0xFF).
const (
	Prefix = 0xFF
	SOF0   = 0xC0 // Start Of Frame (Baseline Sequential).
	DHT    = 0xC4 // Define Huffman Table.
	SOI    = 0xD8 // Start Of Image.
	EOI    = 0xD9 // End Of Image.
	SOS    = 0xDA // Start Of Scan.
	DQT    = 0xDB // Define Quantization Table.
	APP0   = 0xE0
	APP15  = 0xEF
	COM    = 0xFE
)

// Fixed segment lengths, including the 2-byte length field itself.
const (
	app0Len = 16
	dqtLen  = 67
)

// ErrMalformed reports a segment that cannot be written or parsed as a
// well-formed baseline marker.
var ErrMalformed = errors.New("marker: malformed segment")

var jfifIdent = []byte{'J', 'F', 'I', 'F', 0}

// Name returns a short mnemonic for a marker code.
func Name(code byte) string {
	switch {
	case code == SOF0:
		return "SOF0"
	case code == DHT:
		return "DHT"
	case code == SOI:
		return "SOI"
	case code == EOI:
		return "EOI"
	case code == SOS:
		return "SOS"
	case code == DQT:
		return "DQT"
	case code == COM:
		return "COM"
	case code >= APP0 && code <= APP15:
		return fmt.Sprintf("APP%d", code-APP0)
	case code >= 0xD0 && code <= 0xD7:
		return fmt.Sprintf("RST%d", code-0xD0)
	}
	return fmt.Sprintf("0x%02X", code)
}

// DensityUnit is the APP0 density unit.
type DensityUnit uint8

const (
	DensityAspect DensityUnit = iota // no units, aspect ratio only
	DensityDPI
	DensityDPCM
)

// JFIF is the APP0 payload.
type JFIF struct {
	VersionMajor uint8
	VersionMinor uint8
	Units        DensityUnit
	XDensity     uint16
	YDensity     uint16
	ThumbWidth   uint8
	ThumbHeight  uint8
}

// DefaultJFIF is version 1.01 with a 1:1 pixel aspect ratio and no thumbnail.
var DefaultJFIF = JFIF{
	VersionMajor: 1,
	VersionMinor: 1,
	Units:        DensityAspect,
	XDensity:     1,
	YDensity:     1,
}

// Component is one SOF component record.
type Component struct {
	ID      uint8
	H, V    uint8 // sampling factors, 1..4
	TableID uint8 // quantization table id
}

// Frame is the SOF0 payload.
type Frame struct {
	Precision  uint8
	Height     int
	Width      int
	Components []Component
}

// QuantTable is one table record of a DQT segment.
type QuantTable struct {
	Precision uint8 // 0 = 8-bit entries
	ID        uint8
	Data      []byte // 64 entries in zig-zag order
}
