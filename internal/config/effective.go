package config

import (
	"fmt"
	"strings"
	"time"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw on top of DefaultConfig. A cache capacity
// of 0 selects the default.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}

	if raw.Cache != nil {
		if raw.Cache.Capacity != nil {
			switch n := *raw.Cache.Capacity; {
			case n < 0:
				return nil, &ValidationError{Path: "cache.capacity", Err: fmt.Errorf("capacity must be >= 0, got %d", n)}
			case n > 0:
				cfg.Cache.Capacity = n
			}
		}
		if raw.Cache.SweepInterval != nil {
			d, err := parseDuration(*raw.Cache.SweepInterval)
			if err != nil {
				return nil, &ValidationError{Path: "cache.sweep_interval", Err: err}
			}
			cfg.Cache.SweepInterval = d
		}
	}

	if raw.Logging != nil {
		if raw.Logging.Level != nil {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*raw.Logging.Level))
		}
		if raw.Logging.Console != nil {
			cfg.Logging.Console = *raw.Logging.Console
		}
		if raw.Logging.File != nil {
			cfg.Logging.File = strings.TrimSpace(*raw.Logging.File)
		}
		cfg.Logging.MaxSizeMB = derefInt(raw.Logging.MaxSizeMB, cfg.Logging.MaxSizeMB)
		cfg.Logging.MaxFiles = derefInt(raw.Logging.MaxFiles, cfg.Logging.MaxFiles)
	}

	if raw.IPC != nil {
		if raw.IPC.SocketPath != nil {
			cfg.IPC.SocketPath = strings.TrimSpace(*raw.IPC.SocketPath)
		}
		if raw.IPC.Timeout != nil {
			d, err := parseDuration(*raw.IPC.Timeout)
			if err != nil {
				return nil, &ValidationError{Path: "ipc.timeout", Err: err}
			}
			cfg.IPC.Timeout = d
		}
	}

	return cfg, nil
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (use Go syntax such as 30s or 2m)", s)
	}
	return d, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
