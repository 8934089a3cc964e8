package main

import (
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ndlib/monogram/dst"
)

func newMergeCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "merge -o OUT.dst DESIGN.dst...",
		Short: "Merge designs into one, in the order given",
		Long: `Merge stitches the given designs one after another into a single design.
It has one color change at the start, and every color change and end marker
in the inputs is removed. The header of the first design is used.

Examples:
  dstutil merge -o AB.dst A.dst B.dst`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, output, args)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "merged.dst", "file to write the merged design to")
	return cmd
}

func runMerge(cmd *cobra.Command, output string, paths []string) error {
	files, err := mapAll(paths)
	if err != nil {
		return err
	}
	defer closeAll(files)
	bufs := make([][]byte, len(files))
	for i, mf := range files {
		bufs[i] = mf.Bytes()
	}
	data, err := dst.MergeDesigns(bufs)
	if err != nil {
		return errors.WithMessage(err, "merge")
	}
	err = ioutil.WriteFile(output, data, 0644)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes from %d designs\n", output, len(data), len(paths))
	return nil
}
