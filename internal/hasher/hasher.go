package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/cespare/xxhash/v2"
)

// DefaultHexLen is the digest length used in artifact names and manifests.
// 16 hex chars (64 bits) is collision-safe for practical run sizes.
const DefaultHexLen = 16

// ContentHash computes the xxHash64 of data and returns a hex string
// truncated to hexLen (0 = full length).
func ContentHash(data []byte, hexLen int) string {
	return format(xxhash.Sum64(data), hexLen)
}

// ContentHashReader computes xxHash64 from a reader, streaming.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return format(h.Sum64(), hexLen), nil
}

// BlockKey hashes an encode result's identity: the header skeleton followed
// by the coefficient payload. Two runs with identical tables, dimensions and
// block contents produce the same key.
func BlockKey(header, coefficients []byte, hexLen int) string {
	h := xxhash.New()
	_, _ = h.Write(header)
	_, _ = h.Write(coefficients)
	return format(h.Sum64(), hexLen)
}

func format(sum uint64, hexLen int) string {
	full := hex.EncodeToString(binary.BigEndian.AppendUint64(nil, sum))
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
