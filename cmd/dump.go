package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/AnyUserName/jfifcore-cli/internal/block"
	"github.com/AnyUserName/jfifcore-cli/internal/codec"
	"github.com/AnyUserName/jfifcore-cli/internal/colorspace"
	"github.com/AnyUserName/jfifcore-cli/internal/quant"
	"github.com/AnyUserName/jfifcore-cli/internal/source"
	"github.com/AnyUserName/jfifcore-cli/internal/zigzag"
	"github.com/spf13/cobra"
)

var (
	dumpProfile string
	dumpQuality int
	dumpRound   string
	dumpCol     int
	dumpRow     int
	dumpFit     bool
	dumpStages  []string
	dumpHeader  bool
)

// Stage names accepted by --stages, in pipeline order.
var dumpStageNames = []string{"rgb", "ycbcr", "shifted", "dct", "zigzag-real", "ints", "zigzag", "quantized", "tables", "restored"}

var dumpCmd = &cobra.Command{
	Use:   "dump <image>",
	Short: "Print every intermediate stage of one encoded block",
	Long: `Decodes an image, takes one 8x8 block and prints each stage of the
transform core per channel: RGB input, YCbCr, level-shifted samples, real
DCT coefficients and their zig-zag sequence, rounded coefficients, integer
zig-zag sequence and quantized sequence. The "restored" stage shows the YCbCr block converted back to RGB.

Stages: ` + strings.Join(dumpStageNames, ", "),
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpProfile, "profile", "p", "reference", "encode profile")
	dumpCmd.Flags().IntVarP(&dumpQuality, "quality", "q", 0, "quality 1-100 (0 = profile default)")
	dumpCmd.Flags().StringVar(&dumpRound, "rounding", "", "narrowing policy: truncate or nearest (default from profile)")
	dumpCmd.Flags().IntVar(&dumpCol, "block-col", 0, "block column to crop, in 8-pixel units")
	dumpCmd.Flags().IntVar(&dumpRow, "block-row", 0, "block row to crop, in 8-pixel units")
	dumpCmd.Flags().BoolVar(&dumpFit, "fit", false, "resample the whole image into one block")
	dumpCmd.Flags().StringSliceVar(&dumpStages, "stages", nil, "stages to print (default all)")
	dumpCmd.Flags().BoolVar(&dumpHeader, "header", false, "also print the marker skeleton as hex")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	prof, err := resolveProfile(dumpProfile, dumpQuality, dumpRound)
	if err != nil {
		return err
	}
	stages, err := selectStages(dumpStages)
	if err != nil {
		return err
	}

	img, err := source.Open(args[0])
	if err != nil {
		return err
	}
	opts := source.Options{Col: dumpCol, Row: dumpRow}
	if dumpFit || prof.Fit {
		opts.Mode = source.Fit
	}
	rgb, err := source.Extract(img, opts)
	if err != nil {
		return err
	}

	session, err := codec.NewSession(prof.SessionConfig())
	if err != nil {
		return err
	}
	res, err := session.EncodeBlock(rgb)
	if err != nil {
		return err
	}
	logVerbose("%s: %s %dx%d, block %s (%d,%d)",
		args[0], img.Format, img.Bounds().Dx(), img.Bounds().Dy(), opts.Mode, opts.Col, opts.Row)

	w := cmd.OutOrStdout()
	writeDump(w, rgb, res, session, stages)

	if dumpHeader {
		b := img.Bounds()
		hdr, err := session.Header(b.Dx(), b.Dy())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "== header (%d bytes)\n", len(hdr))
		writeHex(w, hdr)
	}
	return nil
}

func selectStages(names []string) (map[string]bool, error) {
	sel := map[string]bool{}
	if len(names) == 0 {
		for _, n := range dumpStageNames {
			sel[n] = true
		}
		return sel, nil
	}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		known := false
		for _, k := range dumpStageNames {
			if n == k {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown stage %q (want one of %s)", n, strings.Join(dumpStageNames, ", "))
		}
		sel[n] = true
	}
	return sel, nil
}

var channelNames = [block.Channels]string{"Y", "Cb", "Cr"}

func writeDump(w io.Writer, rgb *block.RGB, res *codec.Result, session *codec.Session, stages map[string]bool) {
	if stages["rgb"] {
		for c, name := range [block.Channels]string{"R", "G", "B"} {
			writeGrid(w, "rgb", name, func(i int) string { return fmt.Sprintf("%4d", rgb[c][i]) })
		}
	}
	for c := 0; c < block.Channels; c++ {
		name := channelNames[c]
		if stages["ycbcr"] {
			writeGrid(w, "ycbcr", name, func(i int) string { return fmt.Sprintf("%4d", res.YCbCr[c][i]) })
		}
		if stages["shifted"] {
			writeGrid(w, "shifted", name, func(i int) string { return fmt.Sprintf("%5d", res.Shifted[c][i]) })
		}
		if stages["dct"] {
			writeGrid(w, "dct", name, func(i int) string { return fmt.Sprintf("%9.2f", res.Coeffs[c][i]) })
		}
		if stages["zigzag-real"] {
			seq := zigzag.ReorderReal(res.Coeffs[c])
			writeRealSequence(w, "zigzag-real", name, seq[:])
		}
		if stages["ints"] {
			writeGrid(w, "ints", name, func(i int) string { return fmt.Sprintf("%6d", res.Ints[c][i]) })
		}
		if stages["zigzag"] {
			writeSequence(w, "zigzag", name, res.Scan[c][:])
		}
		if stages["quantized"] {
			writeSequence(w, "quantized", name, res.Quantized[c][:])
		}
	}
	if stages["tables"] {
		for _, class := range []quant.Class{quant.Luma, quant.Chroma} {
			t := session.Table(class)
			// Tables are stored in zig-zag order; show them in natural layout.
			writeGrid(w, "table", class.String(), func(i int) string {
				return fmt.Sprintf("%4d", t.Step(zigzag.ScanPos(i/block.Size, i%block.Size)))
			})
		}
	}
	if stages["restored"] {
		back := colorspace.ToRGB(res.YCbCr)
		for c, name := range [block.Channels]string{"R", "G", "B"} {
			writeGrid(w, "restored", name, func(i int) string { return fmt.Sprintf("%4d", back[c][i]) })
		}
	}
}

func writeGrid(w io.Writer, stage, channel string, cell func(i int) string) {
	fmt.Fprintf(w, "== %s %s\n", stage, channel)
	for row := 0; row < block.Size; row++ {
		var sb strings.Builder
		for col := 0; col < block.Size; col++ {
			sb.WriteString(cell(row*block.Size + col))
		}
		fmt.Fprintln(w, sb.String())
	}
}

func writeSequence(w io.Writer, stage, channel string, seq []int32) {
	fmt.Fprintf(w, "== %s %s\n", stage, channel)
	for i := 0; i < len(seq); i += 16 {
		var sb strings.Builder
		for _, v := range seq[i:min(i+16, len(seq))] {
			fmt.Fprintf(&sb, "%6d", v)
		}
		fmt.Fprintln(w, sb.String())
	}
}

func writeRealSequence(w io.Writer, stage, channel string, seq []float64) {
	fmt.Fprintf(w, "== %s %s\n", stage, channel)
	for i := 0; i < len(seq); i += block.Size {
		var sb strings.Builder
		for _, v := range seq[i:min(i+block.Size, len(seq))] {
			fmt.Fprintf(&sb, "%9.2f", v)
		}
		fmt.Fprintln(w, sb.String())
	}
}

func writeHex(w io.Writer, data []byte) {
	for off := 0; off < len(data); off += 16 {
		end := min(off+16, len(data))
		fmt.Fprintf(w, "%04x  % x\n", off, data[off:end])
	}
}
