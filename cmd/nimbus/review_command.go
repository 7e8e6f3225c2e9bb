package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"nimbus/internal/notifications"
	"nimbus/internal/prompt"
	"nimbus/internal/review"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool
	var plain bool

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Confirm and apply journaled filing commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			j, err := ctx.openJournal()
			if err != nil {
				return err
			}

			opts := []review.Option{review.WithNotifier(notifications.NewService(cfg))}
			if cfg.Review.History {
				store, err := ctx.openHistory()
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts, review.WithHistory(store))
			}

			confirmer := prompt.New(prompt.Options{
				AssumeYes: assumeYes,
				Plain:     plain,
				In:        cmd.InOrStdin(),
				Out:       cmd.OutOrStdout(),
			})
			engine := review.NewEngine(j, confirmer, ctx.logger(), opts...)

			summary, err := engine.Run(cmd.Context())
			out := cmd.OutOrStdout()
			if errors.Is(err, prompt.ErrAborted) {
				fmt.Fprintln(out, "Review aborted; the journal was left unchanged")
				return nil
			}
			if err != nil {
				return err
			}
			printReviewSummary(out, summary)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "assume-yes", "y", false, "Accept every command without prompting")
	cmd.Flags().BoolVar(&plain, "plain", false, "Use line prompts even on a terminal")
	return cmd
}

func printReviewSummary(out io.Writer, summary review.Summary) {
	if summary.Total == 0 && summary.Malformed == 0 {
		fmt.Fprintln(out, "Journal is empty; nothing to review")
		return
	}
	fmt.Fprintf(out, "Reviewed %d command(s): %d applied, %d declined, %d no action, %d failed\n",
		summary.Total, summary.Applied, summary.Declined, summary.NoAction, summary.Failed)
	if summary.Malformed > 0 {
		fmt.Fprintf(out, "Skipped %d malformed journal line(s)\n", summary.Malformed)
	}
	for _, failure := range summary.Failures {
		fmt.Fprintf(out, "  failed: %s: %v\n", failure.Command.FilePath, failure.Err)
	}
}
