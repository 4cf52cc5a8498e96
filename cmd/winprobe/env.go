package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/winprobe/internal/config"
	"github.com/1broseidon/winprobe/internal/handlecache"
	"github.com/1broseidon/winprobe/internal/inspect"
	"github.com/1broseidon/winprobe/internal/ipc"
	"github.com/1broseidon/winprobe/internal/logging"
	"github.com/1broseidon/winprobe/internal/platform"
	"github.com/1broseidon/winprobe/internal/runtimepath"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	openBackend = func(cfg *config.Config) (platform.Backend, error) {
		return platform.Open(platform.OpenOptions{Display: cfg.Display})
	}
)

// localEnv is the window system and logger of a single CLI invocation.
type localEnv struct {
	cfg       *config.Config
	logger    *logging.Logger
	backend   platform.Backend
	inspector *inspect.Inspector
}

// openLocal connects to the window system. A process-local cache is attached
// when withCache is set.
func openLocal(cfg *config.Config, withCache bool) (*localEnv, error) {
	logger, err := logging.New(cfg.GetLoggingConfig(), logging.WithConsoleWriter(stderr))
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	backend, err := openBackend(cfg)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to open window system: %w", err)
	}

	var cache *handlecache.Cache
	if withCache {
		cache, err = handlecache.NewForBackend(backend,
			handlecache.WithCapacity(cfg.Cache.Capacity),
			handlecache.WithLogger(logger.Logger))
		if err != nil {
			backend.Close()
			logger.Close()
			return nil, err
		}
	}

	return &localEnv{
		cfg:       cfg,
		logger:    logger,
		backend:   backend,
		inspector: inspect.New(backend, cache, logger.Logger),
	}, nil
}

func (e *localEnv) Close() {
	if err := e.backend.Close(); err != nil {
		e.logger.Debug().Err(err).Msg("failed to close backend")
	}
	e.logger.Close()
}

func daemonClient(cfg *config.Config) (*ipc.Client, error) {
	socketPath, err := runtimepath.ResolveSocketPath(cfg.IPC.SocketPath)
	if err != nil {
		return nil, err
	}
	return ipc.NewClient(socketPath, cfg.IPC.Timeout), nil
}

// daemonUnreachable reports whether err means no daemon answered, as opposed
// to the daemon answering with an error.
func daemonUnreachable(err error) bool {
	var connErr *ipc.ConnectError
	return errors.As(err, &connErr)
}

// resolveShared resolves q through the daemon's shared cache and falls back
// to env when no daemon is running.
func resolveShared(cfg *config.Config, env *localEnv, q platform.Query) (platform.Handle, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	client, err := daemonClient(cfg)
	if err != nil {
		return env.inspector.Resolve(q)
	}
	h, err := client.Resolve(q)
	if daemonUnreachable(err) {
		env.logger.Debug().Err(err).Msg("daemon unreachable, resolving locally")
		return env.inspector.Resolve(q)
	}
	return h, err
}

// infoShared fetches window metadata from the daemon, resolving class/title
// through its shared cache, and falls back to the local inspector when no
// daemon answers.
func infoShared(cfg *config.Config, env *localEnv, t *targetFlags) (platform.Window, error) {
	var h platform.Handle
	if t.handle != "" {
		var err error
		if h, err = parseHandle(t.handle); err != nil {
			return platform.Window{}, err
		}
	} else if err := t.query().Validate(); err != nil {
		return platform.Window{}, err
	}

	local := func() (platform.Window, error) {
		if h != 0 {
			return env.inspector.Info(h)
		}
		return env.inspector.InfoByQuery(t.query())
	}

	client, err := daemonClient(cfg)
	if err != nil {
		return local()
	}
	var w *platform.Window
	if h != 0 {
		w, err = client.Info(h)
	} else {
		w, err = client.InfoByQuery(t.query())
	}
	if daemonUnreachable(err) {
		env.logger.Debug().Err(err).Msg("daemon unreachable, reading window info locally")
		return local()
	}
	if err != nil {
		return platform.Window{}, err
	}
	return *w, nil
}
