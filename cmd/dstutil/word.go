package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ndlib/monogram"
	"github.com/ndlib/monogram/letters"
	"github.com/ndlib/monogram/store"
)

func newWordCmd() *cobra.Command {
	var (
		lettersDir string
		outDir     string
		concurrent int
	)
	cmd := &cobra.Command{
		Use:   "word -l LETTERS_DIR WORD...",
		Short: "Make the design for a word from a directory of letter designs",
		Long: `Word builds the design for each word from the letter designs in a
directory laid out as letters1/A1.dst ... letters10/Z10.dst and
letters1112/A.dst. Each design is saved as WORD.dst in the output directory.

Examples:
  dstutil word -l ./letters -o ./out Smith Jones`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := letters.NewFetcher(store.NewFileSystem(lettersDir), concurrent)
			for _, word := range args {
				result, err := monogram.Generate(context.Background(), f, word)
				if err != nil {
					return fmt.Errorf("%s: %v", word, err)
				}
				path := filepath.Join(outDir, result.Filename())
				err = ioutil.WriteFile(path, result.Data, 0644)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes\n", path, len(result.Data))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&lettersDir, "letters", "l", ".", "directory of letter designs")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory to write designs to")
	cmd.Flags().IntVarP(&concurrent, "fetch", "f", letters.DefaultMaxConcurrent, "number of letter designs read at once")
	return cmd
}
