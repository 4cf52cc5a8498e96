package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultCacheCapacity  = 256
	DefaultSweepInterval  = 30 * time.Second
	DefaultIPCTimeout     = 2 * time.Second
	DefaultLogLevel       = "info"
	DefaultLogMaxSizeMB   = 10
	DefaultLogMaxFiles    = 3
	defaultLogFileRelPath = ".local/share/winprobe/winprobe.log"
)

// CacheConfig sizes the shared handle cache owned by the daemon.
type CacheConfig struct {
	// Capacity is the maximum number of cached lookup keys.
	Capacity int `yaml:"capacity"`
	// SweepInterval controls how often dead entries are pruned. 0 disables sweeping.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level"`
	// Console enables human-readable output on stderr.
	Console bool `yaml:"console"`
	// File is an optional log file path. Empty disables file logging.
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
}

// IPCConfig configures the daemon socket.
type IPCConfig struct {
	// SocketPath overrides the runtime-directory socket location.
	SocketPath string        `yaml:"socket_path,omitempty"`
	Timeout    time.Duration `yaml:"timeout"`
}

type Config struct {
	// Display overrides $DISPLAY for the X11 backend.
	Display string        `yaml:"display,omitempty"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	IPC     IPCConfig     `yaml:"ipc"`
}

func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Capacity:      DefaultCacheCapacity,
			SweepInterval: DefaultSweepInterval,
		},
		Logging: LoggingConfig{
			Level:     DefaultLogLevel,
			Console:   true,
			MaxSizeMB: DefaultLogMaxSizeMB,
			MaxFiles:  DefaultLogMaxFiles,
		},
		IPC: IPCConfig{
			Timeout: DefaultIPCTimeout,
		},
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if c.Cache.Capacity <= 0 {
		return &ValidationError{Path: "cache.capacity", Err: fmt.Errorf("capacity must be > 0")}
	}
	if c.Cache.SweepInterval < 0 {
		return &ValidationError{Path: "cache.sweep_interval", Err: fmt.Errorf("sweep_interval must be >= 0")}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	if c.IPC.Timeout <= 0 {
		return &ValidationError{Path: "ipc.timeout", Err: fmt.Errorf("timeout must be > 0")}
	}
	return nil
}

// GetLoggingConfig returns the logging configuration with defaults applied.
// A File of "default" selects ~/.local/share/winprobe/winprobe.log.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return DefaultConfig().Logging
	}
	cfg := c.Logging
	if cfg.File == "default" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = os.Getenv("HOME")
		}
		if home == "" {
			home = "."
		}
		cfg.File = filepath.Join(home, defaultLogFileRelPath)
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = DefaultLogMaxFiles
	}
	return cfg
}
