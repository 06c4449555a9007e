package cmd

import (
	"fmt"
	"sort"

	"github.com/AnyUserName/jfifcore-cli/internal/block"
	"github.com/AnyUserName/jfifcore-cli/internal/manifest"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for an encoded output directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	m, err := manifest.ReadJSON(args[0])
	if err != nil {
		return err
	}
	printStats(m)
	return nil
}

func printStats(m *manifest.Manifest) {
	fmt.Println()
	fmt.Printf("  Manifest version: %d\n", m.Version)
	fmt.Printf("  Generated:        %s\n", m.GeneratedAt)
	fmt.Printf("  Profile:          %s\n", m.Profile)
	fmt.Printf("  Quality:          %d\n", m.Session.Quality)
	fmt.Printf("  Rounding:         color=%s, coefficients=%s\n", m.Session.ColorRounding, m.Session.CoefRounding)
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:          %d (%s mode)\n", m.BuildInfo.Workers, m.BuildInfo.Mode)
	}
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Total assets:     %d\n", s.TotalAssets)
	fmt.Printf("  Total artifacts:  %d\n", s.TotalArtifacts)
	if s.Failed > 0 {
		fmt.Printf("  Failed images:    %d\n", s.Failed)
	}
	fmt.Printf("  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size:      %s\n", formatBytes(s.TotalOutputBytes))
	if s.TotalAssets > 0 {
		total := s.TotalAssets * block.Channels * block.Len
		fmt.Printf("  Non-zero coeffs:  %d / %d (%.1f%%)\n",
			s.NonZeroCoeffs, total, float64(s.NonZeroCoeffs)/float64(total)*100)
	}
	fmt.Println()

	// Per-format breakdown.
	formatStats := map[string]struct {
		count int
		bytes int64
	}{}
	for _, a := range m.Assets {
		for _, v := range a.Artifacts {
			fs := formatStats[v.Format]
			fs.count++
			fs.bytes += v.Size
			formatStats[v.Format] = fs
		}
	}

	fmt.Println("  Format breakdown:")
	for _, f := range formatOrder {
		if fs, ok := formatStats[f]; ok {
			fmt.Printf("    %-8s  %4d files  %s\n", f, fs.count, formatBytes(fs.bytes))
		}
	}
	fmt.Println()

	// Per-channel breakdown: how many coefficients survive quantization.
	var perChannel [block.Channels]int
	var dcOnly int
	for _, a := range m.Assets {
		c := a.Coefficients
		if c == nil {
			continue
		}
		acLive := false
		for ch, seq := range [][]int32{c.Y, c.Cb, c.Cr} {
			for k, v := range seq {
				if v == 0 {
					continue
				}
				perChannel[ch]++
				if k > 0 {
					acLive = true
				}
			}
		}
		if !acLive {
			dcOnly++
		}
	}
	fmt.Println("  Channel breakdown (non-zero coefficients):")
	for ch, n := range perChannel {
		fmt.Printf("    %-3s  %6d\n", channelNames[ch], n)
	}
	fmt.Printf("  DC-only blocks:   %d / %d assets\n", dcOnly, len(m.Assets))

	// Source format breakdown.
	sources := map[string]int{}
	for _, a := range m.Assets {
		sources[a.Original.Format]++
	}
	var names []string
	for n := range sources {
		names = append(names, n)
	}
	sort.Strings(names)
	fmt.Println()
	fmt.Println("  Source formats:")
	for _, n := range names {
		fmt.Printf("    %-6s  %4d images\n", n, sources[n])
	}

	// Warnings.
	var warnings []string
	for key, a := range m.Assets {
		if len(a.Artifacts) == 0 {
			warnings = append(warnings, fmt.Sprintf("asset %q has no artifacts", key))
		}
		if a.Coefficients == nil {
			warnings = append(warnings, fmt.Sprintf("asset %q missing coefficients", key))
		}
	}
	sort.Strings(warnings)
	if len(warnings) > 0 {
		fmt.Println()
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
	}
	fmt.Println()
}
