package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/AnyUserName/jfifcore-cli/internal/block"
	"github.com/AnyUserName/jfifcore-cli/internal/marker"
	"github.com/AnyUserName/jfifcore-cli/internal/zigzag"
	"github.com/spf13/cobra"
)

var inspectTables bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.jfif>",
	Short: "List the marker segments of a JFIF header and decode them",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolVarP(&inspectTables, "tables", "t", false, "print quantization tables as 8x8 grids")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	h, err := marker.Decode(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}
	writeHeader(cmd.OutOrStdout(), h, inspectTables)
	return nil
}

func writeHeader(w io.Writer, h *marker.Header, tables bool) {
	fmt.Fprintln(w, "  Segments:")
	for _, s := range h.Segments {
		if s.Payload == nil {
			fmt.Fprintf(w, "    %06x  %-5s\n", s.Offset, marker.Name(s.Code))
			continue
		}
		fmt.Fprintf(w, "    %06x  %-5s length=%d\n", s.Offset, marker.Name(s.Code), len(s.Payload)+2)
	}
	fmt.Fprintln(w)

	if j := h.JFIF; j != nil {
		fmt.Fprintf(w, "  JFIF:        %d.%02d, units=%d, density=%dx%d, thumbnail=%dx%d\n",
			j.VersionMajor, j.VersionMinor, j.Units, j.XDensity, j.YDensity, j.ThumbWidth, j.ThumbHeight)
	}
	if f := h.Frame; f != nil {
		fmt.Fprintf(w, "  Frame:       %dx%d, precision=%d, %d components\n",
			f.Width, f.Height, f.Precision, len(f.Components))
		for _, c := range f.Components {
			fmt.Fprintf(w, "    component %d: sampling %dx%d, table %d\n", c.ID, c.H, c.V, c.TableID)
		}
	}

	ids := make([]int, 0, len(h.Tables))
	for id := range h.Tables {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	fmt.Fprintf(w, "  Tables:      %v\n", ids)
	if !h.HasEOI {
		fmt.Fprintln(w, "  warning: no EOI marker")
	}

	if tables {
		for _, id := range ids {
			t := h.Tables[uint8(id)]
			writeGrid(w, "table", fmt.Sprint(id), func(i int) string {
				return fmt.Sprintf("%4d", t.Data[zigzag.ScanPos(i/block.Size, i%block.Size)])
			})
		}
	}
	fmt.Fprintln(w)
}
