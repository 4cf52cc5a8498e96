package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}
	os.Exit(run(os.Args[1], os.Args[2:]))
}

func run(cmd string, args []string) int {
	switch cmd {
	case "find":
		return runFind(args)
	case "resolve":
		return runResolve(args)
	case "info":
		return runInfo(args)
	case "foreground":
		return runForeground(args)
	case "focus":
		return runFocus(args)
	case "move":
		return runMove(args)
	case "topmost":
		return runTopmost(args)
	case "daemon":
		return runDaemon(args)
	case "status":
		return runStatus(args)
	case "cache":
		return runCache(args)
	case "mcp":
		return runMCP(args)
	case "config":
		return runConfig(args)
	case "help", "-h", "--help":
		printMainUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", cmd)
		printMainUsage(stderr)
		return 2
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: winprobe <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  find                Find a window by class and/or title (no cache)")
	fmt.Fprintln(w, "  resolve             Resolve a window through the daemon's shared cache")
	fmt.Fprintln(w, "  info                Show window metadata and geometry")
	fmt.Fprintln(w, "  foreground          Show the focused window")
	fmt.Fprintln(w, "  focus               Bring a window to the foreground")
	fmt.Fprintln(w, "  move                Move and resize a window")
	fmt.Fprintln(w, "  topmost             Get or change always-on-top state")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  daemon              Run the cache daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status and cache counters")
	fmt.Fprintln(w, "  cache prune         Drop dead entries from the daemon cache")
	fmt.Fprintln(w, "  cache purge         Empty the daemon cache")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the config file location")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'winprobe <command> --help' for command-specific options.")
}
