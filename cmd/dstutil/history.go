package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/antonholmquist/jason"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		serverURL string
		n         int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the designs recently requested from a letterd server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := getHistory(serverURL, n)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:14000", "letterd server")
	cmd.Flags().IntVarP(&n, "number", "n", 20, "number of entries to list")
	return cmd
}

func getHistory(serverURL string, n int) (*jason.Object, error) {
	path := fmt.Sprintf("%s/history?n=%d", strings.TrimSuffix(serverURL, "/"), n)
	resp, err := http.Get(path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("Received status %d from %s", resp.StatusCode, serverURL)
	}
	return jason.NewObjectFromReader(resp.Body)
}

func printHistory(out io.Writer, v *jason.Object) error {
	entries, err := v.GetObjectArray("history")
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tWORD\tSTATUS\tSIZE")
	for _, e := range entries {
		created, _ := e.GetString("created")
		word, _ := e.GetString("word")
		status, _ := e.GetString("status")
		size, _ := e.GetInt64("size")
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", created, word, status, size)
	}
	return tw.Flush()
}
