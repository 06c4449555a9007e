package encoder

import (
	"github.com/AnyUserName/jfifcore-cli/internal/codec"
	"github.com/AnyUserName/jfifcore-cli/internal/coeffile"
)

// Coefficients collects the quantized sequences of a result.
func Coefficients(res *codec.Result) *coeffile.Coefficients {
	var c coeffile.Coefficients
	for ch, q := range res.Quantized {
		c[ch] = *q
	}
	return &c
}

// CoefEncoder writes the quantized coefficients as a plain JCOF file.
type CoefEncoder struct{}

func (e *CoefEncoder) Format() string    { return "coef" }
func (e *CoefEncoder) Extension() string { return "coef" }
func (e *CoefEncoder) Available() bool   { return true }

func (e *CoefEncoder) Encode(in Input) ([]byte, error) {
	return coeffile.Marshal(Coefficients(in.Result))
}

// ZstdCoefEncoder writes the JCOF file inside a zstd frame.
type ZstdCoefEncoder struct{}

func (e *ZstdCoefEncoder) Format() string    { return "coef.zst" }
func (e *ZstdCoefEncoder) Extension() string { return "coef.zst" }
func (e *ZstdCoefEncoder) Available() bool   { return true }

func (e *ZstdCoefEncoder) Encode(in Input) ([]byte, error) {
	return coeffile.MarshalCompressed(Coefficients(in.Result))
}
