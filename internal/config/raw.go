package config

import (
	"errors"

	"gopkg.in/yaml.v3"
)

var errIncludeShape = errors.New("include must be a path or a list of paths")

// IncludeList is the include key: a single path or a list of paths. A path
// may name a file or a directory of *.yaml files.
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	items := []*yaml.Node{value}
	switch value.Kind {
	case yaml.ScalarNode:
	case yaml.SequenceNode:
		items = value.Content
	default:
		return errIncludeShape
	}

	paths := make([]string, 0, len(items))
	for _, item := range items {
		if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
			return errIncludeShape
		}
		paths = append(paths, item.Value)
	}
	*l = paths
	return nil
}

type RawCacheConfig struct {
	Capacity      *int    `yaml:"capacity"`
	SweepInterval *string `yaml:"sweep_interval"`
}

type RawLoggingConfig struct {
	Level     *string `yaml:"level"`
	Console   *bool   `yaml:"console"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

type RawIPCConfig struct {
	SocketPath *string `yaml:"socket_path"`
	Timeout    *string `yaml:"timeout"`
}

// RawConfig mirrors the YAML document. Nil fields were not set by any file.
type RawConfig struct {
	Include IncludeList       `yaml:"include"`
	Display *string           `yaml:"display"`
	Cache   *RawCacheConfig   `yaml:"cache"`
	Logging *RawLoggingConfig `yaml:"logging"`
	IPC     *RawIPCConfig     `yaml:"ipc"`
}

// override returns overlay when it is set and base otherwise.
func override[T any](base, overlay *T) *T {
	if overlay != nil {
		return overlay
	}
	return base
}

// mergeSection copies base (or starts from zero) and lets fill apply the
// overlay's set fields. base itself is never modified.
func mergeSection[T any](base, overlay *T, fill func(dst, src *T)) *T {
	if overlay == nil {
		return base
	}
	var out T
	if base != nil {
		out = *base
	}
	fill(&out, overlay)
	return &out
}

// merge layers overlay on top of c; set fields in overlay win.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Display = override(c.Display, overlay.Display)

	out.Cache = mergeSection(c.Cache, overlay.Cache, func(dst, src *RawCacheConfig) {
		dst.Capacity = override(dst.Capacity, src.Capacity)
		dst.SweepInterval = override(dst.SweepInterval, src.SweepInterval)
	})
	out.Logging = mergeSection(c.Logging, overlay.Logging, func(dst, src *RawLoggingConfig) {
		dst.Level = override(dst.Level, src.Level)
		dst.Console = override(dst.Console, src.Console)
		dst.File = override(dst.File, src.File)
		dst.MaxSizeMB = override(dst.MaxSizeMB, src.MaxSizeMB)
		dst.MaxFiles = override(dst.MaxFiles, src.MaxFiles)
	})
	out.IPC = mergeSection(c.IPC, overlay.IPC, func(dst, src *RawIPCConfig) {
		dst.SocketPath = override(dst.SocketPath, src.SocketPath)
		dst.Timeout = override(dst.Timeout, src.Timeout)
	})
	return out
}
