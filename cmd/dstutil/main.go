// Dstutil works with DST embroidery design files.
//
//	dstutil merge -o OUT.dst A.dst B.dst ...
//	dstutil info FILE.dst ...
//	dstutil word -l LETTERS_DIR [-o DIR] WORD ...
//	dstutil history -s http://localhost:14000 [-n N]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dstutil",
		Short:         "Work with DST embroidery designs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMergeCmd(),
		newInfoCmd(),
		newWordCmd(),
		newHistoryCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dstutil:", err)
		os.Exit(1)
	}
}
