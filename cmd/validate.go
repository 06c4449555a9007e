package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/AnyUserName/jfifcore-cli/internal/block"
	"github.com/AnyUserName/jfifcore-cli/internal/coeffile"
	"github.com/AnyUserName/jfifcore-cli/internal/hasher"
	"github.com/AnyUserName/jfifcore-cli/internal/manifest"
	"github.com/AnyUserName/jfifcore-cli/internal/marker"
	"github.com/AnyUserName/jfifcore-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <out_dir_or_manifest>",
	Short: "Validate a jfifcore manifest against the artifacts on disk",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	m, err := manifest.ReadJSON(args[0])
	if err != nil {
		return err
	}

	baseDir := args[0]
	if info, err := os.Stat(baseDir); err == nil && !info.IsDir() {
		baseDir = filepath.Dir(baseDir)
	}
	errors := validateManifest(m, baseDir)

	if len(errors) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d assets, %d artifacts, all files present and intact\n", m.Stats.TotalAssets, m.Stats.TotalArtifacts)
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errors))
	for _, e := range errors {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errors))
}

func validateManifest(m *manifest.Manifest, baseDir string) []string {
	var errs []string

	// Check version.
	if m.Version != manifest.SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}

	for key, asset := range m.Assets {
		if asset.Original.Width < block.Size || asset.Original.Height < block.Size {
			if asset.Block.Mode != "fit" {
				errs = append(errs, fmt.Sprintf("asset %q: %dx%d image has no whole block",
					key, asset.Original.Width, asset.Original.Height))
			}
		}

		want, err := assetScans(asset.Coefficients)
		if err != nil {
			errs = append(errs, fmt.Sprintf("asset %q: coefficients: %v", key, err))
		}

		if len(asset.Artifacts) == 0 {
			errs = append(errs, fmt.Sprintf("asset %q: no artifacts", key))
		}

		seenPaths := map[string]bool{}
		for i, a := range asset.Artifacts {
			if a.Format == "" {
				errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: empty format", key, i))
			}
			if a.Hash == "" {
				errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: missing hash", key, i))
			}
			if a.Path == "" {
				errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: missing path", key, i))
				continue
			}

			// Check duplicate paths.
			if seenPaths[a.Path] {
				errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: duplicate path %q", key, i, a.Path))
			}
			seenPaths[a.Path] = true

			hexLen := len(a.Hash)
			if hexLen == 0 {
				hexLen = hasher.DefaultHexLen
			}
			data, got, err := readArtifact(filepath.Join(baseDir, a.Path), hexLen)
			if err != nil {
				errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: file not found: %s", key, i, a.Path))
				continue
			}
			if a.Size > 0 && int64(len(data)) != a.Size {
				errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: size mismatch: manifest=%d, disk=%d",
					key, i, a.Size, len(data)))
			}
			if a.Hash != "" && got != a.Hash {
				errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: hash mismatch: manifest=%s, disk=%s",
					key, i, a.Hash, got))
			}
			if msg := checkArtifact(a.Format, data, asset, want); msg != "" {
				errs = append(errs, fmt.Sprintf("asset %q artifact[%d]: %s", key, i, msg))
			}
		}
	}

	// Verify stats consistency.
	assetCount := len(m.Assets)
	artifactCount := 0
	for _, a := range m.Assets {
		artifactCount += len(a.Artifacts)
	}
	if m.Stats.TotalAssets != assetCount {
		errs = append(errs, fmt.Sprintf("stats.total_assets mismatch: %d != %d", m.Stats.TotalAssets, assetCount))
	}
	if m.Stats.TotalArtifacts != artifactCount {
		errs = append(errs, fmt.Sprintf("stats.total_artifacts mismatch: %d != %d", m.Stats.TotalArtifacts, artifactCount))
	}

	return errs
}

// readArtifact hashes a file while reading it and returns its contents.
func readArtifact(path string, hexLen int) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	sum, err := hasher.ContentHashReader(io.TeeReader(f, &buf), hexLen)
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), sum, nil
}

// assetScans converts the manifest's per-channel coefficients to scans.
// A nil result with a nil error means the manifest carries none.
func assetScans(c *manifest.Coefficients) (*coeffile.Coefficients, error) {
	if c == nil {
		return nil, nil
	}
	var out coeffile.Coefficients
	for ch, seq := range [][]int32{c.Y, c.Cb, c.Cr} {
		s, err := pipeline.ScanOf(seq)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", channelNames[ch], err)
		}
		out[ch] = s
	}
	return &out, nil
}

// checkArtifact decodes an artifact and compares it with the manifest entry.
func checkArtifact(format string, data []byte, asset manifest.Asset, want *coeffile.Coefficients) string {
	switch format {
	case "jfif":
		h, err := marker.Decode(data)
		if err != nil {
			return err.Error()
		}
		if h.Frame == nil || !h.HasEOI {
			return "header lacks SOF0 or EOI"
		}
		if h.Frame.Width != asset.Original.Width || h.Frame.Height != asset.Original.Height {
			return fmt.Sprintf("frame %dx%d, original %dx%d",
				h.Frame.Width, h.Frame.Height, asset.Original.Width, asset.Original.Height)
		}
	case "coef", "coef.zst":
		got, err := coeffile.Unmarshal(data)
		if err != nil {
			return err.Error()
		}
		if want != nil && *got != *want {
			return "coefficients differ from manifest"
		}
	default:
		return fmt.Sprintf("unknown format %q", format)
	}
	return ""
}
