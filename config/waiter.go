package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Waiter configures the waiter CLI and its offline queue.
type Waiter struct {
	ServerURL      string        `koanf:"server_url"`
	QueueDB        string        `koanf:"queue_db"`
	ProbeInterval  time.Duration `koanf:"probe_interval"`
	MaxProbeDelay  time.Duration `koanf:"max_probe_delay"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	LogLevel       string        `koanf:"log_level"`
}

func defaultWaiter() Waiter {
	return Waiter{
		ServerURL:      "http://localhost:8080",
		QueueDB:        "waiter-queue.db",
		ProbeInterval:  5 * time.Second,
		MaxProbeDelay:  time.Minute,
		RequestTimeout: 10 * time.Second,
		LogLevel:       "info",
	}
}

// LoadWaiter layers defaults, the yaml file at path (optional) and WAITER_
// environment variables, e.g. WAITER_SERVER_URL.
func LoadWaiter(path string) (Waiter, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Waiter{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("WAITER_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "WAITER_"))
	}), nil); err != nil {
		return Waiter{}, fmt.Errorf("env overlay: %w", err)
	}

	cfg := defaultWaiter()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Waiter{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Waiter{}, err
	}
	return cfg, nil
}

func (c Waiter) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url required")
	}
	if c.QueueDB == "" {
		return fmt.Errorf("queue_db required")
	}
	if c.ProbeInterval <= 0 {
		return fmt.Errorf("probe_interval must be positive")
	}
	if c.MaxProbeDelay < c.ProbeInterval {
		return fmt.Errorf("max_probe_delay must not be shorter than probe_interval")
	}
	return nil
}
