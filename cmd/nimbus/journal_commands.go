package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"nimbus/internal/journal"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the pending command journal",
	}

	journalCmd.AddCommand(newJournalListCommand(ctx))
	journalCmd.AddCommand(newJournalClearCommand(ctx))

	return journalCmd
}

type journalEntry struct {
	FilePath    string `json:"file_path,omitempty"`
	Action      string `json:"action"`
	Destination string `json:"destination,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

func newJournalListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List commands awaiting review",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := ctx.openJournal()
			if err != nil {
				return err
			}
			snapshot, err := j.Drain(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				entries := make([]journalEntry, 0, len(snapshot.Commands))
				for _, c := range snapshot.Commands {
					entries = append(entries, toJournalEntry(c))
				}
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(snapshot.Commands) == 0 {
				fmt.Fprintln(out, "Journal is empty")
			} else {
				rows := make([][]string, 0, len(snapshot.Commands))
				for i, c := range snapshot.Commands {
					entry := toJournalEntry(c)
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						entry.Action,
						filepath.Base(entry.FilePath),
						entry.Destination,
						entry.Reason,
					})
				}
				fmt.Fprint(out, renderTable([]column{
					{title: "#", right: true},
					{title: "Action"},
					{title: "File"},
					{title: "Destination", maxWidth: pathColumnWidth},
					{title: "Reason"},
				}, rows))
				fmt.Fprintln(out)
			}
			if len(snapshot.Skipped) > 0 {
				fmt.Fprintf(out, "%d malformed line(s) will be skipped during review\n", len(snapshot.Skipped))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newJournalClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Discard every pending command without applying it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to clear the journal without --force")
			}
			j, err := ctx.openJournal()
			if err != nil {
				return err
			}
			if err := j.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared journal %s\n", j.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm discarding all pending commands")
	return cmd
}

func toJournalEntry(c journal.Command) journalEntry {
	entry := journalEntry{
		FilePath:    c.FilePath,
		Action:      c.Action.String(),
		Destination: c.Destination,
	}
	if c.Reason != journal.ReasonNone {
		entry.Reason = c.Reason.String()
	}
	return entry
}
