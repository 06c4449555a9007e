package encoder

import (
	"github.com/AnyUserName/jfifcore-cli/internal/codec"
)

// Input is everything an encoder may need to serialize one encoded block.
type Input struct {
	Session *codec.Session
	Result  *codec.Result
	Width   int // source image width, declared in SOF0
	Height  int // source image height, declared in SOF0
}

// Encoder serializes an encoded block to one artifact format.
type Encoder interface {
	// Format returns the artifact format name (e.g. "jfif", "coef", "coef.zst").
	Format() string

	// Encode produces the artifact bytes.
	Encode(in Input) ([]byte, error)

	// Available returns true if the encoder is ready to use.
	Available() bool

	// Extension returns the file extension without dot.
	Extension() string
}
