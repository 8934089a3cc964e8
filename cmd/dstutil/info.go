package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ndlib/monogram/dst"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info DESIGN.dst...",
		Short: "Show the header and record counts of designs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var firstErr error
			for _, path := range args {
				err := showInfo(cmd.OutOrStdout(), path)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					if firstErr == nil {
						firstErr = err
					}
				}
			}
			return firstErr
		},
	}
}

func showInfo(out io.Writer, path string) error {
	mf, err := openMapped(path)
	if err != nil {
		return err
	}
	defer mf.Close()
	d, err := dst.Split(mf.Bytes())
	if err != nil {
		return err
	}
	counts, err := dst.Count(d.Stitches)
	if err != nil {
		return err
	}
	h := dst.ParseHeader(d.Header)

	tw := tabwriter.NewWriter(out, 0, 8, 1, ' ', 0)
	fmt.Fprintf(tw, "%s\n", path)
	fmt.Fprintf(tw, "  label\t%s\n", h.Label)
	fmt.Fprintf(tw, "  header stitches\t%d\n", h.StitchCount)
	fmt.Fprintf(tw, "  header color changes\t%d\n", h.ColorChanges)
	fmt.Fprintf(tw, "  extent\t+X %d -X %d +Y %d -Y %d\n", h.PlusX, h.MinusX, h.PlusY, h.MinusY)
	fmt.Fprintf(tw, "  records\t%d\n", counts.Records())
	fmt.Fprintf(tw, "  %s\t%d\n", dst.Stitch, counts.Stitches)
	fmt.Fprintf(tw, "  %s\t%d\n", dst.ColorChange, counts.ColorChanges)
	fmt.Fprintf(tw, "  %s\t%d\n", dst.End, counts.Ends)
	return tw.Flush()
}
