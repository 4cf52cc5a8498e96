package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

const socketName = "winprobe.sock"

// Dir returns the directory holding the daemon socket: $XDG_RUNTIME_DIR,
// then %TEMP%\winprobe on Windows, then /run/user/<uid>, then a private
// /tmp/winprobe-runtime-<uid>. Directories under a temp root are created.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return xdg, nil
	}
	if runtime.GOOS == "windows" {
		return ensureDir(filepath.Join(os.TempDir(), "winprobe"))
	}

	uid := strconv.Itoa(os.Getuid())
	if dir := filepath.Join("/run/user", uid); isDir(dir) {
		return dir, nil
	}
	return ensureDir(filepath.Join("/tmp", "winprobe-runtime-"+uid))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create runtime dir %s: %w", dir, err)
	}
	return dir, nil
}

// ResolveSocketPath returns override when set, otherwise winprobe.sock
// inside Dir.
func ResolveSocketPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, socketName), nil
}
