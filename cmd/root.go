package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "jfifcore",
	Short: "Baseline JPEG transform core: color, DCT, zig-zag, quantization, markers",
	Long: `jfifcore runs the front half of a baseline JPEG encoder on 8x8 blocks.

Each block goes through RGB to YCbCr conversion, level shift, a forward DCT,
zig-zag reordering and quantization. The tool writes the JFIF marker skeleton
(SOI, APP0, DQT, SOF0, EOI) and the quantized coefficients as
content-addressed artifacts, plus a manifest describing the run.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"jfifcore %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[jfifcore] "+format+"\n", args...)
	}
}
