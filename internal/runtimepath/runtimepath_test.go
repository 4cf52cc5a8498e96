package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallbacksWhenXDGRuntimeDirMissing(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix runtime directories")
	}
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}

	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())
	wantTmp := fmt.Sprintf("/tmp/winprobe-runtime-%d", os.Getuid())
	if got != wantRun && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
}

func TestResolveSocketPath(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := ResolveSocketPath("")
	if err != nil {
		t.Fatalf("ResolveSocketPath() error: %v", err)
	}
	if want := filepath.Join(td, "winprobe.sock"); got != want {
		t.Fatalf("ResolveSocketPath(\"\") = %q, want %q", got, want)
	}

	got, err = ResolveSocketPath("/custom/winprobe-alt.sock")
	if err != nil || got != "/custom/winprobe-alt.sock" {
		t.Fatalf("ResolveSocketPath(override) = %q, %v", got, err)
	}
}
