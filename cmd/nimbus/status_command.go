package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"nimbus/internal/preflight"
)

type statusReport struct {
	Monitor struct {
		Running bool   `json:"running"`
		PID     int    `json:"pid,omitempty"`
		LogPath string `json:"log_path,omitempty"`
	} `json:"monitor"`
	Pending   int               `json:"pending"`
	Malformed int               `json:"malformed"`
	Checks    []preflightResult `json:"checks"`
}

type preflightResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show monitor state, pending commands and readiness checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			probe, err := preflight.ProbeMonitor(cfg)
			if err != nil {
				return err
			}
			j, err := ctx.openJournal()
			if err != nil {
				return err
			}
			snapshot, err := j.Drain(cmd.Context())
			if err != nil {
				return err
			}
			checks := preflight.RunAll(cmd.Context(), cfg)

			var report statusReport
			report.Monitor.Running = probe.Running
			report.Monitor.PID = probe.PID
			report.Monitor.LogPath = probe.LogPath
			report.Pending = len(snapshot.Commands)
			report.Malformed = len(snapshot.Skipped)
			for _, check := range checks {
				report.Checks = append(report.Checks, preflightResult(check))
			}

			if jsonOutput {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Monitor: %s\n", probe.Detail())
			if probe.LogPath != "" {
				fmt.Fprintf(out, "Log: %s\n", probe.LogPath)
			}
			fmt.Fprintf(out, "Pending commands: %s\n", strconv.Itoa(report.Pending))
			if report.Malformed > 0 {
				fmt.Fprintf(out, "Malformed journal lines: %d\n", report.Malformed)
			}
			rows := make([][]string, 0, len(checks))
			for _, check := range checks {
				rows = append(rows, []string{check.Name, yesNo(check.Passed), check.Detail})
			}
			fmt.Fprint(out, renderTable([]column{{title: "Check"}, {title: "OK"}, {title: "Detail"}}, rows))
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
