package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	display
//	cache.capacity
//	cache.sweep_interval
//	logging.level
//	logging.console
//	logging.file
//	logging.max_size_mb
//	logging.max_files
//	ipc.socket_path
//	ipc.timeout
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	switch parts[0] {
	case "display":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path %q", path)
		}
		return cfg.Display, nil
	case "cache":
		if len(parts) != 2 {
			return nil, fmt.Errorf("expected cache.<field>")
		}
		switch parts[1] {
		case "capacity":
			return cfg.Cache.Capacity, nil
		case "sweep_interval":
			return cfg.Cache.SweepInterval.String(), nil
		}
	case "logging":
		if len(parts) != 2 {
			return nil, fmt.Errorf("expected logging.<field>")
		}
		switch parts[1] {
		case "level":
			return cfg.Logging.Level, nil
		case "console":
			return cfg.Logging.Console, nil
		case "file":
			return cfg.Logging.File, nil
		case "max_size_mb":
			return cfg.Logging.MaxSizeMB, nil
		case "max_files":
			return cfg.Logging.MaxFiles, nil
		}
	case "ipc":
		if len(parts) != 2 {
			return nil, fmt.Errorf("expected ipc.<field>")
		}
		switch parts[1] {
		case "socket_path":
			return cfg.IPC.SocketPath, nil
		case "timeout":
			return cfg.IPC.Timeout.String(), nil
		}
	}
	return nil, fmt.Errorf("unknown path %q", path)
}
