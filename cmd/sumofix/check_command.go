package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sumofix/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that sumofix can run with the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			out := cmd.OutOrStdout()
			for _, r := range results {
				mark := "ok  "
				if !r.Passed {
					mark = "FAIL"
				}
				fmt.Fprintf(out, "[%s] %-20s %s\n", mark, r.Name, r.Detail)
			}
			if preflight.Failed(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}
