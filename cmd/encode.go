package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/AnyUserName/jfifcore-cli/internal/manifest"
	"github.com/AnyUserName/jfifcore-cli/internal/pipeline"
	"github.com/AnyUserName/jfifcore-cli/internal/profile"
	"github.com/AnyUserName/jfifcore-cli/internal/source"
	"github.com/spf13/cobra"
)

var (
	encodeOutDir   string
	encodeProfile  string
	encodeWorkers  int
	encodeQuality  int
	encodeRounding string
	encodeFormats  []string
	encodeBlockCol int
	encodeBlockRow int
	encodeFit      bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode <input_dir>",
	Short: "Encode one 8x8 block of every image and write artifacts + manifest",
	Long: `Scans input directory for images (png, jpeg, gif, bmp, tiff, webp, ppm, pgm),
takes one 8x8 block from each, and runs it through the transform core.

Artifacts per image: the JFIF marker skeleton (.jfif) and the quantized
coefficients (.coef or zstd-compressed .coef.zst).

Output filenames are content-addressed: <key>.<hash>.ext`,
	Args: cobra.ExactArgs(1),
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().StringVarP(&encodeOutDir, "out", "o", "./jfifcore_out", "output directory")
	encodeCmd.Flags().StringVarP(&encodeProfile, "profile", "p", "reference", "encode profile")
	encodeCmd.Flags().IntVarP(&encodeWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	encodeCmd.Flags().IntVarP(&encodeQuality, "quality", "q", 0, "quality 1-100 (0 = profile default)")
	encodeCmd.Flags().StringVar(&encodeRounding, "rounding", "", "narrowing policy: truncate or nearest (default from profile)")
	encodeCmd.Flags().StringSliceVar(&encodeFormats, "formats", nil, "artifact formats (overrides profile)")
	encodeCmd.Flags().IntVar(&encodeBlockCol, "block-col", 0, "block column to crop, in 8-pixel units")
	encodeCmd.Flags().IntVar(&encodeBlockRow, "block-row", 0, "block row to crop, in 8-pixel units")
	encodeCmd.Flags().BoolVar(&encodeFit, "fit", false, "resample the whole image into one block")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	inputDir := args[0]
	start := time.Now()

	// Resolve absolute paths.
	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(encodeOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	prof, err := resolveProfile(encodeProfile, encodeQuality, encodeRounding)
	if err != nil {
		return err
	}
	if encodeFormats != nil {
		prof.Formats = encodeFormats
	}
	opts := source.Options{Col: encodeBlockCol, Row: encodeBlockRow}
	if encodeFit {
		opts.Mode = source.Fit
	}

	logVerbose("input:   %s", absInput)
	logVerbose("output:  %s", absOutput)
	logVerbose("profile: %s (quality=%d, formats=%v)", prof.Name, prof.Quality, prof.Formats)

	// Create output dir.
	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p, err := pipeline.New(pipeline.Config{
		InputDir:  absInput,
		OutputDir: absOutput,
		Profile:   prof,
		Workers:   encodeWorkers,
		Verbose:   verbose,
		Block:     opts,
	})
	if err != nil {
		return err
	}

	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	// Write manifest.
	manifestPath := filepath.Join(absOutput, manifest.FileName)
	if err := manifest.WriteJSON(m, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	printEncodeReport(m, time.Since(start))
	return nil
}

// resolveProfile looks up a profile and applies quality and rounding overrides.
func resolveProfile(name string, quality int, rounding string) (profile.Profile, error) {
	if !profile.Known(name) {
		logVerbose("unknown profile %q, using reference settings", name)
	}
	prof := profile.Get(name)
	if quality != 0 {
		if quality < 1 || quality > 100 {
			return prof, fmt.Errorf("quality %d out of range 1-100", quality)
		}
		prof.Quality = quality
	}
	return prof.WithRounding(rounding)
}

func printEncodeReport(m *manifest.Manifest, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║             jfifcore encode complete             ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	stats := m.Stats
	fmt.Printf("  Assets:       %d\n", stats.TotalAssets)
	fmt.Printf("  Artifacts:    %d\n", stats.TotalArtifacts)
	if stats.Failed > 0 {
		fmt.Printf("  Failed:       %d images\n", stats.Failed)
	}
	fmt.Printf("  Input size:   %s\n", formatBytes(stats.TotalInputBytes))
	fmt.Printf("  Output size:  %s\n", formatBytes(stats.TotalOutputBytes))
	fmt.Printf("  Non-zero:     %d of %d coefficients\n", stats.NonZeroCoeffs, stats.TotalAssets*3*64)
	fmt.Printf("  Quality:      %d (%s color, %s coefficients)\n",
		m.Session.Quality, m.Session.ColorRounding, m.Session.CoefRounding)
	fmt.Printf("  Time:         %s\n", elapsed.Round(time.Millisecond))
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:      %d  (%s mode)\n", m.BuildInfo.Workers, m.BuildInfo.Mode)
	}
	fmt.Println()

	// Top 10 busiest blocks.
	if len(m.Assets) > 0 {
		type assetCoeffs struct {
			key     string
			nonZero int
			dc      int32
		}
		var items []assetCoeffs
		for key, a := range m.Assets {
			it := assetCoeffs{key: key, nonZero: a.Coefficients.NonZero()}
			if a.Coefficients != nil && len(a.Coefficients.Y) > 0 {
				it.dc = a.Coefficients.Y[0]
			}
			items = append(items, it)
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].nonZero != items[j].nonZero {
				return items[i].nonZero > items[j].nonZero
			}
			return items[i].key < items[j].key
		})
		n := len(items)
		if n > 10 {
			n = 10
		}
		fmt.Printf("  Top %d busiest blocks (non-zero coefficients, luma DC):\n", n)
		for _, it := range items[:n] {
			fmt.Printf("    %-40s %4d  %5d\n", truncKey(it.key, 40), it.nonZero, it.dc)
		}
		fmt.Println()
	}

	fmt.Printf("  Formats:      %s\n", strings.Join(detectOutputFormats(m), ", "))
	fmt.Println()

	data, _ := json.Marshal(m)
	fmt.Printf("  Manifest:     %s (%s)\n", manifest.FileName, formatBytes(int64(len(data))))
	fmt.Println()
}

var formatOrder = []string{"jfif", "coef", "coef.zst"}

func detectOutputFormats(m *manifest.Manifest) []string {
	set := map[string]bool{}
	for _, a := range m.Assets {
		for _, v := range a.Artifacts {
			set[v.Format] = true
		}
	}
	var out []string
	for _, f := range formatOrder {
		if set[f] {
			out = append(out, f)
		}
	}
	return out
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
