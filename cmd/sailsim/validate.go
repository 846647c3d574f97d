package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zeusync/sailsim/internal/config"
)

type validateResult struct {
	Valid     bool   `json:"valid"`
	Map       string `json:"map"`
	BoatTypes int    `json:"boat_types"`
	Boats     int    `json:"boats"`
}

func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Check a config without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(args[0])
			if err != nil {
				return err
			}
			res := validateResult{Valid: true, Map: c.Map.Name, BoatTypes: len(c.BoatTypes), Boats: len(c.Boats)}
			return output(cmd.OutOrStdout(), rootOpts, res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "ok: map %q, %d boat types, %d boats\n", res.Map, res.BoatTypes, res.Boats)
				return err
			})
		},
	}
}
