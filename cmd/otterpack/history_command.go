package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"otterpack/internal/history"
)

var errNoHistory = errors.New("run history is disabled (history.enabled = false)")

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversion runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errNoHistory
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, tableSpec{
				headers: []string{"Started", "Status", "Format", "Mix", "Inputs", "Outputs", "Duration", "Output", "Error"},
				aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
				rows:    historyRows(runs),
			}.render())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	return cmd
}

func historyRows(runs []history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		errText := r.ErrorKind
		if r.ExitCode != nil {
			errText = fmt.Sprintf("%s (exit %d)", errText, *r.ExitCode)
		}
		rows = append(rows, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Status,
			r.Format,
			yesNo(r.Mix),
			strconv.Itoa(r.Inputs),
			strconv.Itoa(r.Outputs),
			r.Duration().Round(time.Millisecond).String(),
			r.OutputRoot,
			errText,
		})
	}
	return rows
}
