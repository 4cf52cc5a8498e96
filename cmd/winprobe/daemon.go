package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/winprobe/internal/config"
	"github.com/1broseidon/winprobe/internal/handlecache"
	"github.com/1broseidon/winprobe/internal/inspect"
	"github.com/1broseidon/winprobe/internal/ipc"
	"github.com/1broseidon/winprobe/internal/logging"
	"github.com/1broseidon/winprobe/internal/runtimepath"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: winprobe daemon")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Run the cache daemon in the foreground. Other winprobe processes")
		fmt.Fprintln(stderr, "resolve windows through its shared cache over a local socket.")
	}
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}

	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serveDaemon(ctx, cfg); err != nil {
		if errors.Is(err, ipc.ErrDaemonRunning) {
			fmt.Fprintln(stderr, "winprobe daemon is already running")
		} else {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}
	return 0
}

// serveDaemon runs the daemon until ctx is cancelled.
func serveDaemon(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.GetLoggingConfig(), logging.WithConsoleWriter(stderr))
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Close()

	backend, err := openBackend(cfg)
	if err != nil {
		return fmt.Errorf("failed to open window system: %w", err)
	}
	defer backend.Close()

	cache, err := handlecache.NewForBackend(backend,
		handlecache.WithCapacity(cfg.Cache.Capacity),
		handlecache.WithLogger(logger.Logger))
	if err != nil {
		return err
	}
	inspector := inspect.New(backend, cache, logger.Logger)

	socketPath, err := runtimepath.ResolveSocketPath(cfg.IPC.SocketPath)
	if err != nil {
		return fmt.Errorf("failed to resolve socket path: %w", err)
	}
	server, err := ipc.NewServer(inspector, ipc.ServerConfig{
		SocketPath: socketPath,
		Timeout:    cfg.IPC.Timeout,
		Logger:     logger.Logger,
	})
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	if cfg.Cache.SweepInterval > 0 {
		sweeper := handlecache.NewSweeper(cache, handlecache.SweeperConfig{
			Interval: cfg.Cache.SweepInterval,
			Logger:   logger.With().Str("component", "sweeper").Logger(),
		})
		go sweeper.Run(ctx)
	}

	logger.Info().
		Str("backend", backend.Name()).
		Int("capacity", cache.Capacity()).
		Dur("sweep_interval", cfg.Cache.SweepInterval).
		Msg("winprobe daemon started")

	<-ctx.Done()

	stats := cache.Stats()
	logger.Info().
		Uint64("hits", stats.Hits).
		Uint64("misses", stats.Misses).
		Uint64("stale", stats.Stale).
		Msg("winprobe daemon stopping")
	return nil
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(stderr)
	jsonOut := fs.Bool("json", false, "Output JSON")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: winprobe status [--json]")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Show daemon status and shared cache counters via IPC.")
	}
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}

	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	client, err := daemonClient(cfg)
	if err != nil {
		return fail(err)
	}
	status, err := client.GetStatus()
	if err != nil {
		return fail(err)
	}

	if wantJSON(*jsonOut) {
		if err := writeJSON(stdout, status); err != nil {
			return fail(err)
		}
		return 0
	}
	printStatus(status)
	return 0
}

func printStatus(status *ipc.StatusData) {
	uptime := time.Duration(status.UptimeSeconds) * time.Second
	fmt.Fprintf(stdout, "daemon_running: %v\n", status.DaemonRunning)
	fmt.Fprintf(stdout, "backend:        %s\n", status.Backend)
	fmt.Fprintf(stdout, "pid:            %d\n", status.PID)
	fmt.Fprintf(stdout, "uptime:         %s\n", uptime)
	fmt.Fprintf(stdout, "cache_entries:  %d/%d\n", status.Cache.Len, status.Cache.Capacity)
	fmt.Fprintf(stdout, "cache_hits:     %d\n", status.Cache.Hits)
	fmt.Fprintf(stdout, "cache_misses:   %d\n", status.Cache.Misses)
	fmt.Fprintf(stdout, "cache_stale:    %d\n", status.Cache.Stale)
	fmt.Fprintf(stdout, "cache_evicted:  %d\n", status.Cache.Evictions)
	fmt.Fprintf(stdout, "cache_pruned:   %d\n", status.Cache.Pruned)
	fmt.Fprintf(stdout, "hit_ratio:      %.2f\n", status.Cache.HitRatio())
}

func printCacheUsage() {
	fmt.Fprintln(stderr, "Usage: winprobe cache <prune|purge>")
	fmt.Fprintln(stderr, "")
	fmt.Fprintln(stderr, "  prune    Drop entries whose windows have closed")
	fmt.Fprintln(stderr, "  purge    Empty the cache (counters are kept)")
}

func runCache(args []string) int {
	if len(args) == 0 {
		printCacheUsage()
		return 2
	}
	action := args[0]
	switch action {
	case "prune", "purge":
	case "help", "-h", "--help":
		printCacheUsage()
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown cache command: %s\n\n", action)
		printCacheUsage()
		return 2
	}

	fs := flag.NewFlagSet("cache "+action, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = printCacheUsage
	if code, ok := parseArgs(fs, args[1:]); !ok {
		return code
	}

	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	client, err := daemonClient(cfg)
	if err != nil {
		return fail(err)
	}

	if action == "purge" {
		if err := client.Purge(); err != nil {
			return fail(err)
		}
		fmt.Fprintln(stdout, "cache purged")
		return 0
	}
	removed, err := client.Prune()
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(stdout, "pruned %d entries\n", removed)
	return 0
}
