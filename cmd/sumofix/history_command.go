package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"sumofix/internal/history"
	"sumofix/internal/textutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently repaired archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if store == nil {
				fmt.Fprintln(out, "History is disabled in the configuration.")
				return nil
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No repairs recorded yet.")
				return nil
			}

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("load history stats: %w", err)
			}
			fmt.Fprintf(out, "%d succeeded, %d failed (showing %s)\n",
				stats[history.StatusSucceeded],
				stats[history.StatusFailed],
				textutil.Plural(len(runs), "run", "runs"),
			)
			fmt.Fprintln(out, renderHistory(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}

func renderHistory(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		detail := run.ErrorMessage
		if run.Status == history.StatusSucceeded {
			detail = filepath.Base(run.OutputPath)
		}
		rows = append(rows, []string{
			run.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			shortID(run.RunID),
			filepath.Base(run.InputPath),
			string(run.Status),
			strconv.Itoa(run.GeometriesRenamed),
			strconv.Itoa(run.ImagesFailed),
			strconv.Itoa(run.FieldsRemoved),
			detail,
		})
	}
	return textutil.RenderTable(
		[]string{"Finished", "Run", "Archive", "Status", "Renamed", "Bad images", "Removed", "Output / error"},
		rows,
		[]textutil.Alignment{
			textutil.AlignLeft, textutil.AlignLeft, textutil.AlignLeft, textutil.AlignLeft,
			textutil.AlignRight, textutil.AlignRight, textutil.AlignRight, textutil.AlignLeft,
		},
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
