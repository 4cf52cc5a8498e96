package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

type Source struct {
	Kind   SourceKind
	Name   string // for defaults
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML-path -> last writer source (file only)
	Files   []string          // all loaded files, in load order
}

// EnvConfigPath overrides the default config location when set.
const EnvConfigPath = "WINPROBE_CONFIG"

func DefaultConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "winprobe", "config.yaml"), nil
}

// Load reads the merged configuration from the standard location. A missing
// file yields the defaults.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources loads config and returns file-level sources for introspection.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

func LoadFromPath(path string) (*LoadResult, error) {
	raw := RawConfig{}
	sources := map[string]Source{}
	var files []string

	if exists, err := pathExists(path); err != nil {
		return nil, err
	} else if exists {
		fl := &fileLoader{seen: map[string]bool{}}
		merged, err := fl.load(path)
		if err != nil {
			return nil, err
		}
		raw = raw.merge(merged.raw)
		for key, src := range merged.sources {
			sources[key] = src
		}
		files = append(files, merged.files...)
	}

	cfg, err := BuildEffectiveConfig(raw)
	if err != nil {
		return nil, attachSourceContext(err, sources)
	}
	if err := cfg.Validate(); err != nil {
		return nil, attachSourceContext(err, sources)
	}

	return &LoadResult{
		Config:  cfg,
		Sources: sources,
		Files:   files,
	}, nil
}

// position renders a file source as file:line:column.
func (s Source) position() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

func nodeSource(file string, n *yaml.Node) Source {
	return Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column}
}

// layer is one config file merged over everything it includes.
type layer struct {
	raw     RawConfig
	sources map[string]Source
	files   []string
}

func newLayer() layer {
	return layer{sources: map[string]Source{}}
}

// apply merges top over l; values set in top win.
func (l *layer) apply(top layer) {
	l.raw = l.raw.merge(top.raw)
	for p, src := range top.sources {
		l.sources[p] = src
	}
	l.files = append(l.files, top.files...)
}

// fileLoader follows includes depth first. stack holds the include chain of
// the file being loaded; seen holds every file merged so far.
type fileLoader struct {
	seen  map[string]bool
	stack []string
}

func (fl *fileLoader) load(path string) (layer, error) {
	canon, err := canonicalPath(path)
	if err != nil {
		return layer{}, err
	}
	if slices.Contains(fl.stack, canon) {
		return layer{}, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(fl.stack, " -> "), canon)
	}
	if fl.seen[canon] {
		return newLayer(), nil
	}
	fl.seen[canon] = true

	root, raw, err := readConfigFile(canon)
	if err != nil {
		return layer{}, err
	}

	fl.stack = append(fl.stack, canon)
	defer func() { fl.stack = fl.stack[:len(fl.stack)-1] }()

	out := newLayer()
	for _, ref := range includeRefs(root, canon) {
		paths, err := expandInclude(canon, ref.value)
		if err != nil {
			return layer{}, fmt.Errorf("%s: include %q: %w", ref.source.position(), ref.value, err)
		}
		for _, incPath := range paths {
			inc, err := fl.load(incPath)
			if err != nil {
				return layer{}, err
			}
			out.apply(inc)
		}
	}

	own := newLayer()
	own.raw = raw
	walkSources(root, canon, "", own.sources)
	own.files = []string{canon}
	out.apply(own)
	return out, nil
}

// readConfigFile returns the root node of path and its strict decoding.
func readConfigFile(path string) (*yaml.Node, RawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, RawConfig{}, fmt.Errorf("%s: failed to read: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, RawConfig{}, fmt.Errorf("%s: failed to parse yaml: %w", path, err)
	}

	var raw RawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, RawConfig{}, fmt.Errorf("%s: %w", path, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	return root, raw, nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// expandInclude turns one include entry into files. A directory contributes
// its *.yaml and *.yml files in name order.
func expandInclude(baseFile, include string) ([]string, error) {
	path, err := includePath(baseFile, include)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml":
			if !ent.IsDir() {
				files = append(files, filepath.Join(path, ent.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// includePath expands environment variables and a leading ~ in include, then
// resolves it against the directory of baseFile.
func includePath(baseFile, include string) (string, error) {
	include = os.ExpandEnv(strings.TrimSpace(include))
	if include == "" {
		return "", fmt.Errorf("path is empty")
	}
	if include == "~" || strings.HasPrefix(include, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		include = filepath.Join(home, strings.TrimPrefix(include[1:], "/"))
	}
	if filepath.IsAbs(include) {
		return include, nil
	}
	return filepath.Join(filepath.Dir(baseFile), include), nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// walkSources records the position of every mapping value under node, keyed
// by dotted path. Sequences are recorded as a whole.
func walkSources(node *yaml.Node, file, prefix string, out map[string]Source) {
	if node == nil {
		return
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			path := node.Content[i].Value
			if prefix != "" {
				path = prefix + "." + path
			}
			val := node.Content[i+1]
			out[path] = nodeSource(file, val)
			walkSources(val, file, path, out)
		}
	case yaml.SequenceNode:
		if prefix != "" {
			out[prefix] = nodeSource(file, node)
		}
	}
}

type includeRef struct {
	value  string
	source Source
}

// includeRefs returns the entries of the top-level include key in order.
func includeRefs(root *yaml.Node, file string) []includeRef {
	if root == nil || root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "include" {
			continue
		}
		val := root.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			return []includeRef{{value: val.Value, source: nodeSource(file, val)}}
		case yaml.SequenceNode:
			refs := make([]includeRef, 0, len(val.Content))
			for _, item := range val.Content {
				if item.Kind == yaml.ScalarNode {
					refs = append(refs, includeRef{value: item.Value, source: nodeSource(file, item)})
				}
			}
			return refs
		}
		return nil
	}
	return nil
}

// attachSourceContext fills in where a failing value was set.
func attachSourceContext(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return verr
}
