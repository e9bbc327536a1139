package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"specfetch/internal/history"
)

var errHistoryDisabled = errors.New("history is disabled (set [history] enabled = true)")

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the fetch ledger",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var datasetID string
	var failedOnly bool
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent fetch attempts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errHistoryDisabled
			}
			defer store.Close()

			opts := history.ListOptions{DatasetID: strings.TrimSpace(datasetID), Limit: limit}
			if failedOnly {
				opts.Outcome = history.OutcomeFailed
			}
			entries, err := store.List(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No fetches recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistory(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetID, "dataset", "", "Only show attempts for this dataset id")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed attempts")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries (default 50)")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every ledger entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errHistoryDisabled
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d history entries\n", removed)
			return nil
		},
	}
}

func renderHistory(entries []history.Entry) string {
	headers := []string{"ID", "When", "Dataset", "Tier", "Outcome", "Layout", "Samples", "Duration", "Error"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		detail := ""
		if e.Failed() {
			detail = e.ErrorMessage
			if e.ErrorKind != "" {
				detail = e.ErrorKind + ": " + detail
			}
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.ID),
			e.CreatedAt.Local().Format(time.DateTime),
			e.DatasetID,
			e.Tier,
			string(e.Outcome),
			displayLabel(e.Layout),
			fmt.Sprintf("%d", e.Samples),
			formatDuration(e.Duration),
			detail,
		})
	}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
	return renderTable(headers, rows, aligns)
}
