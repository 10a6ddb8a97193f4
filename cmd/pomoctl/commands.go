package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pomodoro/pomod/internal/client"
	"pomodoro/pomod/internal/config"
	"pomodoro/pomod/internal/model"
	"pomodoro/pomod/internal/notify"
	"pomodoro/pomod/internal/service"
)

var version = "dev"

type rootOptions struct {
	host string
	port int
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "pomoctl",
		Short:         "A lightweight pomodoro timer client",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&opts.host, "host", "H", config.DefaultHost, "daemon host")
	root.PersistentFlags().IntVarP(&opts.port, "port", "p", config.DefaultPort, "daemon port")

	root.AddCommand(
		newStartCmd(opts),
		newStopCmd(opts),
		newStateCmd(opts),
		newWatchCmd(opts),
	)
	return root
}

// connect builds a client from POMOCTL_* settings, overridden by any flag
// the user set.
func connect(cmd *cobra.Command, opts *rootOptions) (*client.Client, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = opts.host
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = opts.port
	}
	return client.New(cfg.BaseURL(), cfg.AuthSecret), nil
}

func newStartCmd(opts *rootOptions) *cobra.Command {
	var req model.StartRequest

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a pomodoro session",
		Long:  "Start a pomodoro session. Any value left at zero uses the daemon's default.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			state, err := c.Start(cmd.Context(), req)
			if errors.Is(err, client.ErrAlreadyRunning) {
				return fmt.Errorf("a pomodoro is already in progress, run pomoctl stop first")
			}
			if err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), state)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Uint32Var(&req.Periods, "periods", 0, "work periods to run, 0 for unlimited")
	flags.Uint32Var(&req.WorkTimeMin, "work", 0, "work period length in minutes")
	flags.Uint32Var(&req.ShortBreakMin, "short", 0, "short break length in minutes")
	flags.Uint32Var(&req.LongBreakMin, "long", 0, "long break length in minutes")
	flags.Uint32Var(&req.ShortBreaksBeforeLong, "breaks", 0, "short breaks before a long break")
	return cmd
}

func newStopCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			state, err := c.Stop(cmd.Context())
			if err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), state)
			return nil
		},
	}
}

func newStateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the current phase and time remaining",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			state, err := c.State(cmd.Context())
			if err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), state)
			return nil
		},
	}
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print every phase change until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			err = c.Watch(ctx, func(ev client.WatchEvent) {
				if ev.State != nil {
					printState(out, ev.State)
					return
				}
				if ev.Type == notify.EventPhase {
					fmt.Fprintf(out, "%s %s\n", ev.At.Local().Format("15:04:05"), phaseColor(ev.Phase).Sprint(client.PhaseLabel(ev.Phase)))
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func printState(out io.Writer, state *service.StateView) {
	line := phaseColor(state.Phase).Sprint(client.PhaseLabel(state.Phase))
	if remaining := client.FormatRemaining(state.TimeRemainingSeconds); remaining != "" {
		line += " " + remaining
	}
	if state.Phase.Active() && state.PeriodsKind == model.PeriodsLimited {
		line += fmt.Sprintf(" (%d periods left)", state.PeriodsValue)
	}
	fmt.Fprintln(out, line)
}

func phaseColor(phase model.Phase) *color.Color {
	switch phase {
	case model.PhaseWorking:
		return color.New(color.FgRed, color.Bold)
	case model.PhaseShortBreak:
		return color.New(color.FgGreen)
	case model.PhaseLongBreak:
		return color.New(color.FgCyan)
	default:
		return color.New(color.Faint)
	}
}
