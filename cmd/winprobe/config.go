package main

import (
	"errors"
	"flag"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/winprobe/internal/config"
)

const configPathHelp = "Config file path (default: $WINPROBE_CONFIG or ~/.config/winprobe/config.yaml)"

func printConfigUsage() {
	fmt.Fprintln(stderr, "Usage:")
	fmt.Fprintln(stderr, "  winprobe config validate [--path PATH]")
	fmt.Fprintln(stderr, "  winprobe config print [--path PATH] [--effective|--defaults]")
	fmt.Fprintln(stderr, "  winprobe config path")
	fmt.Fprintln(stderr, "  winprobe config explain [--path PATH] <yaml.path>")
}

func runConfig(args []string) int {
	if len(args) == 0 {
		printConfigUsage()
		return 2
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "validate":
		return runConfigValidate(rest)
	case "print":
		return runConfigPrint(rest)
	case "path":
		return runConfigPath(rest)
	case "explain":
		return runConfigExplain(rest)
	case "help", "-h", "--help":
		printConfigUsage()
		return 2
	default:
		fmt.Fprintf(stderr, "Unknown config subcommand: %s\n", sub)
		return 2
	}
}

// configFlags returns a flag set for a config subcommand with --path bound.
func configFlags(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs, fs.String("path", "", configPathHelp)
}

func loadConfigResult(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfigValidate(args []string) int {
	fs, path := configFlags("validate")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if _, err := loadConfigResult(*path); err != nil {
		return fail(err)
	}
	fmt.Fprintln(stdout, "config: ok")
	return 0
}

func runConfigPrint(args []string) int {
	fs, path := configFlags("print")
	defaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
	fs.Bool("effective", true, "Print effective config (default)")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}

	cfg := config.DefaultConfig()
	if !*defaults {
		res, err := loadConfigResult(*path)
		if err != nil {
			return fail(err)
		}
		for _, f := range res.Files {
			fmt.Fprintf(stdout, "# loaded: %s\n", f)
		}
		cfg = res.Config
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fail(err)
	}
	_, _ = stdout.Write(data)
	return 0
}

func runConfigPath(args []string) int {
	fs := flag.NewFlagSet("path", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(stdout, path)
	return 0
}

func runConfigExplain(args []string) int {
	fs, path := configFlags("explain")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		return usageError(fs, errors.New("explain requires exactly one <yaml.path>"))
	}
	key := fs.Arg(0)

	res, err := loadConfigResult(*path)
	if err != nil {
		return fail(err)
	}
	value, src, err := config.Explain(res, key)
	if err != nil {
		return fail(err)
	}
	rendered, err := yaml.Marshal(value)
	if err != nil {
		return fail(err)
	}

	fmt.Fprintf(stdout, "path: %s\nsource: %s\nvalue: %s", key, formatSource(src), rendered)
	return 0
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		switch {
		case src.File == "":
			return "file"
		case src.Line > 0:
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		default:
			return "file:" + src.File
		}
	case config.SourceDefault:
		if src.Name == "" {
			return "default"
		}
		return "default:" + src.Name
	default:
		return string(src.Kind)
	}
}
