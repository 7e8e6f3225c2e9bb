package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"nimbus/internal/history"
)

type historyEntry struct {
	ID         int64  `json:"id"`
	SessionID  string `json:"session_id"`
	FilePath   string `json:"file_path,omitempty"`
	Action     string `json:"action"`
	Result     string `json:"result"`
	NewPath    string `json:"new_path,omitempty"`
	Error      string `json:"error,omitempty"`
	ReviewedAt string `json:"reviewed_at"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past review outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			outcomes, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				entries := make([]historyEntry, 0, len(outcomes))
				for _, o := range outcomes {
					entries = append(entries, toHistoryEntry(o))
				}
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(outcomes) == 0 {
				fmt.Fprintln(out, "No review history")
				return nil
			}
			rows := make([][]string, 0, len(outcomes))
			for _, o := range outcomes {
				detail := o.NewPath
				if o.Error != "" {
					detail = o.Error
				}
				rows = append(rows, []string{
					o.ReviewedAt.Local().Format("2006-01-02 15:04"),
					string(o.Result),
					o.Command.Action.String(),
					filepath.Base(o.Command.FilePath),
					detail,
				})
			}
			fmt.Fprint(out, renderTable([]column{
				{title: "Reviewed"},
				{title: "Result"},
				{title: "Action"},
				{title: "File"},
				{title: "Detail", maxWidth: pathColumnWidth},
			}, rows))
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of outcomes to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func toHistoryEntry(o history.Outcome) historyEntry {
	return historyEntry{
		ID:         o.ID,
		SessionID:  o.SessionID,
		FilePath:   o.Command.FilePath,
		Action:     o.Command.Action.String(),
		Result:     string(o.Result),
		NewPath:    o.NewPath,
		Error:      o.Error,
		ReviewedAt: o.ReviewedAt.UTC().Format(time.RFC3339),
	}
}
