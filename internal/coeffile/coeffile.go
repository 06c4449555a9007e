// Package coeffile serializes quantized coefficient sequences so a separate
// entropy-coding stage can pick them up.
//
// Layout (big-endian):
//
//	"JCOF" | version (1) | channel count (1) | channels × 64 × int16
//
// The whole file may be wrapped in a single zstd frame; Unmarshal detects
// this from the zstd magic number.
package coeffile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/AnyUserName/jfifcore-cli/internal/block"
)

// Version is the current layout version.
const Version = 1

// ErrFormat reports data that is not a coefficient file or a value that
// cannot be represented in one.
var ErrFormat = errors.New("coeffile: bad format")

var (
	magic     = []byte("JCOF")
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

const headerLen = 6

// maxDecoded caps decompressed input; a valid file is headerLen + 384 bytes.
const maxDecoded = 1 << 16

// Coefficients is one scan-ordered sequence per channel (Y, Cb, Cr).
type Coefficients [block.Channels]block.Scan

// Marshal encodes c without compression.
func Marshal(c *Coefficients) ([]byte, error) {
	buf := make([]byte, 0, headerLen+block.Channels*block.Len*2)
	buf = append(buf, magic...)
	buf = append(buf, Version, block.Channels)
	for ch := range c {
		for k, v := range c[ch] {
			if v < math.MinInt16 || v > math.MaxInt16 {
				return nil, fmt.Errorf("%w: channel %d coefficient %d = %d overflows int16", ErrFormat, ch, k, v)
			}
			buf = binary.BigEndian.AppendUint16(buf, uint16(int16(v)))
		}
	}
	return buf, nil
}

// MarshalCompressed encodes c and wraps the result in a zstd frame.
func MarshalCompressed(c *Coefficients) ([]byte, error) {
	raw, err := Marshal(c)
	if err != nil {
		return nil, err
	}
	enc := encPool.Get().(*zstd.Encoder)
	defer encPool.Put(enc)
	return enc.EncodeAll(raw, nil), nil
}

// Unmarshal decodes plain or zstd-wrapped coefficient data.
func Unmarshal(data []byte) (*Coefficients, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		dec := decPool.Get().(*zstd.Decoder)
		raw, err := dec.DecodeAll(data, nil)
		decPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrFormat, err)
		}
		data = raw
	}
	if len(data) < headerLen || !bytes.HasPrefix(data, magic) {
		return nil, fmt.Errorf("%w: missing JCOF header", ErrFormat)
	}
	if data[4] != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, data[4])
	}
	if int(data[5]) != block.Channels {
		return nil, fmt.Errorf("%w: %d channels, want %d", ErrFormat, data[5], block.Channels)
	}
	body := data[headerLen:]
	if len(body) != block.Channels*block.Len*2 {
		return nil, fmt.Errorf("%w: body is %d bytes", ErrFormat, len(body))
	}
	var c Coefficients
	for ch := range c {
		for k := range c[ch] {
			c[ch][k] = int32(int16(binary.BigEndian.Uint16(body)))
			body = body[2:]
		}
	}
	return &c, nil
}

var encPool = sync.Pool{
	New: func() any {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		return enc
	},
}

var decPool = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecoded))
		return dec
	},
}
