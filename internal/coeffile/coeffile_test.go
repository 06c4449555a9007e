package coeffile

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Coefficients {
	var c Coefficients
	c[0][0] = 63
	c[0][1] = -12
	c[1][0] = -1024
	c[2][63] = 32767
	c[2][62] = -32768
	return &c
}

func TestMarshalLayout(t *testing.T) {
	data, err := Marshal(sample())
	require.NoError(t, err)
	require.Len(t, data, 6+3*64*2)
	assert.Equal(t, []byte{'J', 'C', 'O', 'F', 1, 3}, data[:6])
	assert.Equal(t, []byte{0x00, 0x3F, 0xFF, 0xF4}, data[6:10])
	assert.Equal(t, []byte{0xFC, 0x00}, data[6+128:6+130])
}

func TestRoundTrip(t *testing.T) {
	want := sample()

	plain, err := Marshal(want)
	require.NoError(t, err)
	got, err := Unmarshal(plain)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	packed, err := MarshalCompressed(want)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(packed, zstdMagic))
	assert.Less(t, len(packed), len(plain))
	got, err = Unmarshal(packed)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMarshalOverflow(t *testing.T) {
	var c Coefficients
	c[1][5] = 40000
	_, err := Marshal(&c)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestUnmarshalErrors(t *testing.T) {
	good, err := Marshal(sample())
	require.NoError(t, err)

	badVersion := append([]byte(nil), good...)
	badVersion[4] = 9
	badChannels := append([]byte(nil), good...)
	badChannels[5] = 1

	for name, data := range map[string][]byte{
		"empty":        nil,
		"wrong magic":  []byte("JPEG\x01\x03"),
		"version":      badVersion,
		"channels":     badChannels,
		"truncated":    good[:100],
		"corrupt zstd": append(append([]byte(nil), zstdMagic...), 1, 2, 3),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Unmarshal(data)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestUnmarshalDecompressionLimit(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()

	// A JCOF header followed by 8 MiB of zeros compresses to a few hundred bytes.
	bomb := append([]byte("JCOF\x01\x03"), make([]byte, 8<<20)...)
	_, err = Unmarshal(enc.EncodeAll(bomb, nil))
	require.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "zstd")

	// Valid compressed files stay well inside the limit.
	data, err := MarshalCompressed(sample())
	require.NoError(t, err)
	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}
