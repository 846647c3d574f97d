package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zeusync/sailsim/internal/sim/trace"
)

// NewCompareCommand checks that two runs of the same config produced the same
// boats tick by tick.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <a.jsonl.zst> <b.jsonl.zst>",
		Short: "Compare two tick traces",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readTrace(args[0])
			if err != nil {
				return err
			}
			b, err := readTrace(args[1])
			if err != nil {
				return err
			}
			if err := trace.Compare(a, b); err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), rootOpts, map[string]any{"identical": true, "ticks": len(a)}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "identical: %d ticks\n", len(a))
				return err
			})
		},
	}
}

func readTrace(path string) ([]trace.Tick, error) {
	var ticks []trace.Tick
	err := trace.Open(path, func(t trace.Tick) error {
		ticks = append(ticks, t)
		return nil
	})
	return ticks, err
}
