// Package logging provides colored, leveled log output for pomod and pomoctl.
//
// Every function writes one prefixed, color-coded line. Debug output is
// suppressed unless verbose mode is enabled via SetVerbose(true).
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	mu      sync.Mutex
	verbose bool
	stdout  io.Writer = os.Stdout
	stderr  io.Writer = os.Stderr
	now               = time.Now
)

// Color printers for each log level.
var (
	infoPrefix  = color.New(color.FgBlue).SprintFunc()
	warnPrefix  = color.New(color.FgYellow).SprintFunc()
	errorPrefix = color.New(color.FgRed).SprintFunc()
	phasePrefix = color.New(color.FgCyan).SprintFunc()
	debugPrefix = color.New(color.FgBlue).SprintFunc()
)

// SetVerbose enables or disables Debug output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// SetOutput redirects log output. A nil writer leaves that stream unchanged.
func SetOutput(out, errOut io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

func write(w *io.Writer, prefix, msg string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(*w, "%s %s %s\n", now().Format("15:04:05"), prefix, msg)
}

// Info prints an informational message to stdout in blue.
func Info(msg string) {
	write(&stdout, infoPrefix("[INFO]"), msg)
}

// Warn prints a warning message to stdout in yellow.
func Warn(msg string) {
	write(&stdout, warnPrefix("[WARN]"), msg)
}

// Error prints an error message to stderr in red.
func Error(msg string) {
	write(&stderr, errorPrefix("[ERROR]"), msg)
}

// Phase prints a phase change to stdout in cyan.
func Phase(msg string) {
	write(&stdout, phasePrefix("[PHASE]"), msg)
}

// Debug prints a debug message to stdout, only when verbose mode is enabled.
func Debug(msg string) {
	mu.Lock()
	enabled := verbose
	mu.Unlock()
	if !enabled {
		return
	}
	write(&stdout, debugPrefix("[DEBUG]"), msg)
}

// FormatDuration converts a duration in seconds to a human-readable string.
//
// Examples:
//
//	FormatDuration(45)   => "45s"
//	FormatDuration(90)   => "1m 30s"
//	FormatDuration(3661) => "1h 1m 1s"
func FormatDuration(seconds uint64) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
