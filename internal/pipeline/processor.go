package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnyUserName/jfifcore-cli/internal/block"
	"github.com/AnyUserName/jfifcore-cli/internal/codec"
	"github.com/AnyUserName/jfifcore-cli/internal/coeffile"
	"github.com/AnyUserName/jfifcore-cli/internal/encoder"
	"github.com/AnyUserName/jfifcore-cli/internal/hasher"
	"github.com/AnyUserName/jfifcore-cli/internal/manifest"
	"github.com/AnyUserName/jfifcore-cli/internal/source"
)

// processResult holds the result of processing a single source image.
type processResult struct {
	key   string
	asset manifest.Asset
	err   error
}

// processImage handles a single source image: decode, extract, encode, write.
func processImage(src Source, cfg Config, session *codec.Session, registry *encoder.Registry) (result processResult) {
	result.key = src.Key

	// A decoder panic on a hostile file fails that image only.
	defer func() {
		if r := recover(); r != nil {
			result.err = fmt.Errorf("process %s: panic: %v", src.RelPath, r)
		}
	}()

	img, err := source.Open(src.AbsPath)
	if err != nil {
		result.err = err
		return result
	}

	rgb, err := source.Extract(img, cfg.Block)
	if err != nil {
		result.err = fmt.Errorf("extract %s: %w", src.RelPath, err)
		return result
	}

	res, err := session.EncodeBlock(rgb)
	if err != nil {
		result.err = fmt.Errorf("encode %s: %w", src.RelPath, err)
		return result
	}

	bounds := img.Bounds()
	in := encoder.Input{
		Session: session,
		Result:  res,
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
	}

	header, err := session.Header(in.Width, in.Height)
	if err != nil {
		result.err = fmt.Errorf("header %s: %w", src.RelPath, err)
		return result
	}
	coefs := encoder.Coefficients(res)
	raw, err := coeffile.Marshal(coefs)
	if err != nil {
		result.err = fmt.Errorf("coefficients %s: %w", src.RelPath, err)
		return result
	}

	result.asset = manifest.Asset{
		Original: manifest.OriginalInfo{
			Width:  in.Width,
			Height: in.Height,
			Format: img.Format,
			Size:   src.Size,
		},
		Block: manifest.BlockInfo{
			Col:  cfg.Block.Col,
			Row:  cfg.Block.Row,
			Mode: cfg.Block.Mode.String(),
		},
		Key:          hasher.BlockKey(header, raw, hasher.DefaultHexLen),
		Coefficients: manifestCoefficients(coefs),
	}
	if cfg.Block.Mode == source.Fit {
		result.asset.Block.Col, result.asset.Block.Row = 0, 0
	}

	// Ensure output subdirectory exists.
	keyDir := filepath.Dir(src.Key)
	if keyDir != "." {
		if err := os.MkdirAll(filepath.Join(cfg.OutputDir, keyDir), 0o755); err != nil {
			result.err = fmt.Errorf("mkdir %s: %w", keyDir, err)
			return result
		}
	}

	for _, format := range registry.ResolveFormats(cfg.Profile.Formats) {
		enc := registry.Get(format)
		if enc == nil {
			continue
		}

		data, err := enc.Encode(in)
		if err != nil {
			if cfg.Verbose {
				fmt.Fprintf(os.Stderr, "[jfifcore] warn: encode %s as %s: %v\n", src.Key, format, err)
			}
			continue
		}

		// Content hash for filename.
		contentHash := hasher.ContentHash(data, hasher.DefaultHexLen)

		// Build filename: key.hash.ext
		fileName := fmt.Sprintf("%s.%s.%s", filepath.Base(src.Key), contentHash[:8], enc.Extension())
		relPath := filepath.ToSlash(filepath.Join(keyDir, fileName))

		outPath := filepath.Join(cfg.OutputDir, relPath)
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			result.err = fmt.Errorf("write %s: %w", relPath, err)
			return result
		}

		result.asset.Artifacts = append(result.asset.Artifacts, manifest.Artifact{
			Format: format,
			Size:   int64(len(data)),
			Hash:   contentHash,
			Path:   relPath,
		})
	}

	return result
}

func manifestCoefficients(c *coeffile.Coefficients) *manifest.Coefficients {
	out := &manifest.Coefficients{}
	for ch, dst := range []*[]int32{&out.Y, &out.Cb, &out.Cr} {
		*dst = append([]int32(nil), c[ch][:]...)
	}
	return out
}

// ScanOf converts a manifest channel back into a scan-ordered block.
func ScanOf(ch []int32) (block.Scan, error) {
	var s block.Scan
	if len(ch) != block.Len {
		return s, fmt.Errorf("%w: %d coefficients", block.ErrInvalidInput, len(ch))
	}
	copy(s[:], ch)
	return s, nil
}
