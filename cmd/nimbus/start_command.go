package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nimbus/internal/daemonctl"
	"nimbus/internal/daemonrun"
)

func newStartCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	var development bool
	var detach bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Watch the download directory and journal filing commands",
		Long: `Run the download monitor.

New files in the download directory are matched against the configured
courses and a filing command is appended to the journal for each one.
Nothing is moved until "nimbus review" is run. The monitor runs in the
foreground until Ctrl+C unless --detach is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !detach {
				return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
					LogLevel:    logLevel,
					Development: development,
				})
			}

			executable, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}
			result, err := daemonctl.EnsureStarted(cfg, executable, daemonctl.LaunchOptions{
				ConfigPath: ctx.configPath(),
				LogLevel:   logLevel,
			}, 10*time.Second)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch result.State {
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintf(out, "Monitor already running (pid %d)\n", result.PID)
			default:
				fmt.Fprintf(out, "Monitor started (pid %d)\n", result.PID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&development, "dev", false, "Enable development logging (source locations)")
	cmd.Flags().BoolVarP(&detach, "detach", "d", false, "Run the monitor in the background")
	return cmd
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	var grace time.Duration

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a background monitor",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			result, err := daemonctl.Stop(cfg, grace)
			if errors.Is(err, daemonctl.ErrNotRunning) {
				fmt.Fprintln(out, "Monitor is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(out, "Monitor did not exit within %s; killed pid %d\n", grace, result.PID)
				return nil
			}
			fmt.Fprintf(out, "Monitor stopped (pid %d)\n", result.PID)
			return nil
		},
	}

	cmd.Flags().DurationVar(&grace, "grace", 10*time.Second, "How long to wait before force-killing")
	return cmd
}
