package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"pomodoro/pomod/internal/clock"
	"pomodoro/pomod/internal/config"
	"pomodoro/pomod/internal/handler"
	"pomodoro/pomod/internal/logging"
	"pomodoro/pomod/internal/notify"
	"pomodoro/pomod/internal/router"
	"pomodoro/pomod/internal/scheduler"
	"pomodoro/pomod/internal/service"
	"pomodoro/pomod/internal/session"
)

const shutdownTimeout = 5 * time.Second

var version = "dev"

type flags struct {
	configFile string
	host       string
	port       int
	verbose    bool
	noNotify   bool
}

func main() {
	var f flags

	rootCmd := &cobra.Command{
		Use:     "pomod",
		Short:   "Pomodoro timer daemon",
		Long:    "pomod runs a single pomodoro session at a time and serves its state over HTTP.",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVar(&f.configFile, "config", "", "path to a YAML config file")
	rootCmd.Flags().StringVarP(&f.host, "host", "H", config.DefaultHost, "address to listen on")
	rootCmd.Flags().IntVarP(&f.port, "port", "p", config.DefaultPort, "port to listen on")
	rootCmd.Flags().BoolVar(&f.verbose, "verbose", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&f.noNotify, "no-notify", false, "disable desktop notifications")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// loadConfig applies only the flags the user set on top of file and env.
func loadConfig(cmd *cobra.Command, f flags) (config.Daemon, error) {
	cfg, err := config.LoadDaemon(f.configFile)
	if err != nil {
		return config.Daemon{}, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = f.host
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = f.port
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if cmd.Flags().Changed("no-notify") {
		cfg.Notifications = !f.noNotify
	}
	if err := cfg.Validate(); err != nil {
		return config.Daemon{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config.Daemon) error {
	logging.SetVerbose(cfg.Verbose)
	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	clk := clock.New()
	hub := notify.NewHub(clk)
	notifiers := notify.Multi{notify.Log{}, hub}
	if cfg.Notifications {
		notifiers = append(notifiers, notify.NewDesktop(cfg.NotifyCommand, cfg.NotifyTimeout))
	}

	state := session.NewShared(clk)
	sched := scheduler.New(state, notifiers, clk)
	pomodoroService := service.NewPomodoroService(state, sched, cfg.Durations.Defaults())
	authService := service.NewAuthService(cfg.AuthSecret, service.DefaultTokenTTL)
	pomodoroHandler := handler.NewPomodoroHandler(pomodoroService, hub)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(authService, pomodoroHandler, cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.Info("pomod listening at " + srv.Addr)
		if authService.Enabled() {
			logging.Debug("bearer token authentication enabled")
		}
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		pomodoroService.Shutdown()
		hub.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("run server: %w", err)
	case <-ctx.Done():
	}

	logging.Info("shutting down")
	pomodoroService.Shutdown()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
