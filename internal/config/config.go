// Package config assembles pomod and pomoctl settings.
//
// Daemon settings layer, lowest precedence first: built-in defaults, an
// optional YAML file, POMOD_* environment variables and finally command-line
// flags the user explicitly set (applied by the command).
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"pomodoro/pomod/internal/model"
)

const (
	DefaultHost          = "::1"
	DefaultPort          = 20799
	DefaultNotifyCommand = "notify-send"
	DefaultNotifyTimeout = 4 * time.Second
)

// Durations are the values substituted for zero Start arguments.
type Durations struct {
	WorkMinutes           uint32 `yaml:"work_minutes" env:"WORK_MINUTES"`
	ShortBreakMinutes     uint32 `yaml:"short_break_minutes" env:"SHORT_BREAK_MINUTES"`
	LongBreakMinutes      uint32 `yaml:"long_break_minutes" env:"LONG_BREAK_MINUTES"`
	ShortBreaksBeforeLong uint32 `yaml:"short_breaks_before_long" env:"SHORT_BREAKS_BEFORE_LONG"`
}

func (d Durations) Defaults() model.Defaults {
	return model.Defaults{
		WorkMinutes:           d.WorkMinutes,
		ShortBreakMinutes:     d.ShortBreakMinutes,
		LongBreakMinutes:      d.LongBreakMinutes,
		ShortBreaksBeforeLong: d.ShortBreaksBeforeLong,
	}
}

type Daemon struct {
	Host          string        `yaml:"host" env:"HOST"`
	Port          int           `yaml:"port" env:"PORT"`
	AuthSecret    string        `yaml:"auth_secret" env:"AUTH_SECRET"`
	Notifications bool          `yaml:"notifications" env:"NOTIFICATIONS"`
	NotifyCommand string        `yaml:"notify_command" env:"NOTIFY_COMMAND"`
	NotifyTimeout time.Duration `yaml:"notify_timeout" env:"NOTIFY_TIMEOUT"`
	Verbose       bool          `yaml:"verbose" env:"VERBOSE"`
	CORSOrigins   []string      `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	Durations     Durations     `yaml:"durations" envPrefix:"DEFAULT_"`
}

func DefaultDaemon() Daemon {
	d := model.DefaultDurations
	return Daemon{
		Host:          DefaultHost,
		Port:          DefaultPort,
		Notifications: true,
		NotifyCommand: DefaultNotifyCommand,
		NotifyTimeout: DefaultNotifyTimeout,
		Durations: Durations{
			WorkMinutes:           d.WorkMinutes,
			ShortBreakMinutes:     d.ShortBreakMinutes,
			LongBreakMinutes:      d.LongBreakMinutes,
			ShortBreaksBeforeLong: d.ShortBreaksBeforeLong,
		},
	}
}

// LoadDaemon reads path (skipped when empty) and then the environment on top
// of the defaults.
func LoadDaemon(path string) (Daemon, error) {
	cfg := DefaultDaemon()
	if path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return Daemon{}, err
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "POMOD_"}); err != nil {
		return Daemon{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Durations = cfg.Durations.withFallback(model.DefaultDurations)
	if err := cfg.Validate(); err != nil {
		return Daemon{}, err
	}
	return cfg, nil
}

func (d Durations) withFallback(fallback model.Defaults) Durations {
	if d.WorkMinutes == 0 {
		d.WorkMinutes = fallback.WorkMinutes
	}
	if d.ShortBreakMinutes == 0 {
		d.ShortBreakMinutes = fallback.ShortBreakMinutes
	}
	if d.LongBreakMinutes == 0 {
		d.LongBreakMinutes = fallback.LongBreakMinutes
	}
	if d.ShortBreaksBeforeLong == 0 {
		d.ShortBreaksBeforeLong = fallback.ShortBreaksBeforeLong
	}
	return d
}

func (c Daemon) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.NotifyTimeout < 0 {
		return errors.New("notify timeout must not be negative")
	}
	if err := c.Durations.Defaults().Validate(); err != nil {
		return fmt.Errorf("invalid durations: %w", err)
	}
	return nil
}

func (c Daemon) Addr() string {
	return JoinHostPort(c.Host, c.Port)
}

type Client struct {
	Host       string `env:"HOST"`
	Port       int    `env:"PORT"`
	AuthSecret string `env:"AUTH_SECRET"`
}

func LoadClient() (Client, error) {
	cfg := Client{Host: DefaultHost, Port: DefaultPort}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "POMOCTL_"}); err != nil {
		return Client{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Client) BaseURL() string {
	return "http://" + JoinHostPort(c.Host, c.Port)
}

// JoinHostPort accepts IPv6 hosts with or without brackets.
func JoinHostPort(host string, port int) string {
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func loadYAML(path string, cfg *Daemon) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
