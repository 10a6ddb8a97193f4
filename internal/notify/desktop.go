package notify

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"pomodoro/pomod/internal/logging"
	"pomodoro/pomod/internal/model"
)

const (
	Summary        = "Pomodoro Timer"
	DefaultCommand = "notify-send"
	DefaultTimeout = 4 * time.Second
)

type runFunc func(ctx context.Context, name string, args ...string) error

// Desktop shows a desktop notification by running a notify-send compatible
// command. Fire-and-forget: never blocks the caller, failures are only
// logged at debug level.
type Desktop struct {
	command string
	timeout time.Duration
	run     runFunc
}

func NewDesktop(command string, timeout time.Duration) *Desktop {
	if command == "" {
		command = DefaultCommand
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Desktop{
		command: command,
		timeout: timeout,
		run:     runCommand,
	}
}

func (d *Desktop) Notify(phase model.Phase) {
	args := []string{
		"--expire-time", fmt.Sprintf("%d", d.timeout.Milliseconds()),
		Summary,
		Message(phase),
	}
	go func() {
		// the expire time only hints the notification server; the process
		// itself gets a little longer before it is killed
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout+time.Second)
		defer cancel()
		if err := d.run(ctx, d.command, args...); err != nil {
			logging.Debug(fmt.Sprintf("desktop notification for %s failed: %v", phase, err))
		}
	}()
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
