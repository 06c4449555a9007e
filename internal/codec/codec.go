// Package codec runs the transform stage of a baseline JPEG encoder on one
// 8×8×3 block and writes the structural header a decoder needs to interpret
// the resulting coefficients.
//
// A Session is immutable after NewSession and may be shared by any number of
// goroutines encoding distinct blocks.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/AnyUserName/jfifcore-cli/internal/block"
	"github.com/AnyUserName/jfifcore-cli/internal/colorspace"
	"github.com/AnyUserName/jfifcore-cli/internal/dct"
	"github.com/AnyUserName/jfifcore-cli/internal/marker"
	"github.com/AnyUserName/jfifcore-cli/internal/quant"
	"github.com/AnyUserName/jfifcore-cli/internal/zigzag"
)

// ErrConfig reports an unusable session configuration.
var ErrConfig = errors.New("codec: invalid configuration")

// Sampling is a component's horizontal and vertical sampling factor.
type Sampling struct {
	H, V uint8
}

// Config is the in-memory configuration of an encode session.
type Config struct {
	Luma   *quant.Table
	Chroma *quant.Table

	// Sampling per component (Y, Cb, Cr). Zero values mean 1x1.
	Sampling [block.Channels]Sampling

	ColorRounding colorspace.Rounding
	CoefRounding  dct.Rounding

	// JFIF overrides the APP0 payload; nil uses marker.DefaultJFIF.
	JFIF *marker.JFIF
}

// Session holds the validated, read-only state shared by every block.
type Session struct {
	luma, chroma *quant.Table
	sampling     [block.Channels]Sampling
	colorRound   colorspace.Rounding
	coefRound    dct.Rounding
	jfif         marker.JFIF
}

// NewSession validates cfg and returns a session.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Luma == nil || cfg.Chroma == nil {
		return nil, fmt.Errorf("%w: both luma and chroma tables are required", ErrConfig)
	}
	s := &Session{
		luma:       cfg.Luma,
		chroma:     cfg.Chroma,
		colorRound: cfg.ColorRounding,
		coefRound:  cfg.CoefRounding,
		jfif:       marker.DefaultJFIF,
	}
	for c, smp := range cfg.Sampling {
		if smp.H == 0 && smp.V == 0 {
			smp = Sampling{H: 1, V: 1}
		}
		if smp.H < 1 || smp.H > 4 || smp.V < 1 || smp.V > 4 {
			return nil, fmt.Errorf("%w: component %d sampling %dx%d", ErrConfig, c, smp.H, smp.V)
		}
		s.sampling[c] = smp
	}
	if cfg.JFIF != nil {
		if _, err := marker.AppendAPP0(nil, *cfg.JFIF); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		s.jfif = *cfg.JFIF
	}
	return s, nil
}

// Table returns the quantization table used for a class.
func (s *Session) Table(c quant.Class) *quant.Table {
	if c == quant.Chroma {
		return s.chroma
	}
	return s.luma
}

// ColorRounding returns the session's color narrowing policy.
func (s *Session) ColorRounding() colorspace.Rounding { return s.colorRound }

// CoefRounding returns the session's coefficient narrowing policy.
func (s *Session) CoefRounding() dct.Rounding { return s.coefRound }

// Result holds every intermediate stage of one encoded block, channels in
// Y, Cb, Cr order.
type Result struct {
	YCbCr     *block.YCbCr
	Shifted   [block.Channels]*block.Shifted
	Coeffs    [block.Channels]*block.Coeffs
	Ints      [block.Channels]*block.Ints
	Scan      [block.Channels]*block.Scan
	Quantized [block.Channels]*block.Scan
}

// EncodeBlock runs color transform, level shift, forward DCT, zig-zag
// reorder and quantization on one block.
func (s *Session) EncodeBlock(in *block.RGB) (*Result, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: nil block", block.ErrInvalidInput)
	}
	res := &Result{YCbCr: colorspace.ToYCbCr(in, s.colorRound)}
	res.Shifted = colorspace.LevelShiftAll(res.YCbCr)
	for c := 0; c < block.Channels; c++ {
		res.Coeffs[c] = dct.Forward(res.Shifted[c])
		res.Ints[c] = dct.ToInts(res.Coeffs[c], s.coefRound)
		res.Scan[c] = zigzag.Reorder(res.Ints[c])
		res.Quantized[c] = quant.Quantize(res.Scan[c], s.Table(quant.ClassOf(c)))
	}
	return res, nil
}

// Components returns the SOF component records for the given table ids.
func (s *Session) Components(lumaID, chromaID uint8) []marker.Component {
	comps := make([]marker.Component, block.Channels)
	for c := range comps {
		id := lumaID
		if quant.ClassOf(c) == quant.Chroma {
			id = chromaID
		}
		comps[c] = marker.Component{
			ID:      uint8(c + 1),
			H:       s.sampling[c].H,
			V:       s.sampling[c].V,
			TableID: id,
		}
	}
	return comps
}

// WriteHeader writes SOI, APP0, DQT (luma), DQT (chroma), SOF0 and EOI for
// an image of the given dimensions. The first failing write is returned and
// the partial output is left in w.
func (s *Session) WriteHeader(w io.Writer, width, height int) error {
	mw := marker.NewWriter(w)
	if err := mw.WriteSOI(); err != nil {
		return err
	}
	if err := mw.WriteAPP0(s.jfif); err != nil {
		return err
	}
	lumaID, err := mw.WriteDQT(s.luma)
	if err != nil {
		return err
	}
	chromaID, err := mw.WriteDQT(s.chroma)
	if err != nil {
		return err
	}
	frame := marker.Frame{
		Precision:  8,
		Height:     height,
		Width:      width,
		Components: s.Components(lumaID, chromaID),
	}
	if err := mw.WriteSOF0(frame); err != nil {
		return err
	}
	return mw.WriteEOI()
}

// Header returns the bytes WriteHeader would produce.
func (s *Session) Header(width, height int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(2 + 18 + 2*69 + 19 + 2)
	if err := s.WriteHeader(&buf, width, height); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
