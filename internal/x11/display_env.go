package x11

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

var (
	getenvFn                  = os.Getenv
	runCommandOutputFn        = runCommandOutput
	processEnvironFn          = processEnviron
	detectSessionX11EnvFn     = detectSessionX11Env
	detectDisplayFromSocketFn = detectDisplayFromSockets
)

const x11SocketDir = "/tmp/.X11-unix"

// DisplayEnv is the X11 display and authority file to connect with.
type DisplayEnv struct {
	Display    string
	XAuthority string
}

// ResolveDisplayEnv finds a display for processes started without GUI
// environment, such as an MCP server launched by an editor. Priority for the
// display: $DISPLAY, configured, the user's logind session, the highest
// socket in /tmp/.X11-unix. XAUTHORITY falls back to ~/.Xauthority.
func ResolveDisplayEnv(configured string) (DisplayEnv, error) {
	env := DisplayEnv{
		Display:    firstNonEmpty(getenvFn("DISPLAY"), configured),
		XAuthority: strings.TrimSpace(getenvFn("XAUTHORITY")),
	}

	if env.Display == "" || env.XAuthority == "" {
		sessionDisplay, sessionXAuth := detectSessionX11EnvFn()
		env.Display = firstNonEmpty(env.Display, sessionDisplay)
		env.XAuthority = firstNonEmpty(env.XAuthority, sessionXAuth)
	}
	if env.Display == "" {
		env.Display = detectDisplayFromSocketFn(x11SocketDir)
	}
	if env.Display == "" {
		return DisplayEnv{}, errors.New("no X11 display found; set display in config (e.g. display: \":1\") or export DISPLAY")
	}

	if env.XAuthority == "" {
		env.XAuthority = homeXAuthority()
	}
	return env, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func homeXAuthority() string {
	home := strings.TrimSpace(getenvFn("HOME"))
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if home == "" {
		return ""
	}
	candidate := filepath.Join(home, ".Xauthority")
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	return candidate
}

func runCommandOutput(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// detectSessionX11Env asks logind for the first graphical session of the
// current user and reads DISPLAY and XAUTHORITY from its leader process.
func detectSessionX11Env() (display string, xauthority string) {
	out, err := runCommandOutputFn("loginctl", "list-sessions", "--no-legend")
	if err != nil {
		return "", ""
	}
	for _, id := range parseLoginctlSessions(out, strconv.Itoa(os.Getuid())) {
		props, err := runCommandOutputFn("loginctl", "show-session", id, "-p", "Display", "-p", "Leader")
		if err != nil {
			continue
		}
		kv := parseProperties(props)
		display = kv["Display"]
		if display == "" || strings.EqualFold(display, "n/a") {
			continue
		}

		pid, err := strconv.Atoi(kv["Leader"])
		if err != nil || pid <= 0 {
			return display, ""
		}
		leaderEnv, err := processEnvironFn(pid)
		if err != nil {
			return display, ""
		}
		return firstNonEmpty(leaderEnv["DISPLAY"], display), strings.TrimSpace(leaderEnv["XAUTHORITY"])
	}
	return "", ""
}

// parseLoginctlSessions returns the ids of sessions owned by uid from
// `loginctl list-sessions --no-legend` output.
func parseLoginctlSessions(output string, uid string) []string {
	var sessions []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == uid {
			sessions = append(sessions, fields[0])
		}
	}
	return sessions
}

// parseProperties parses Key=Value lines.
func parseProperties(output string) map[string]string {
	props := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if ok {
			props[key] = strings.TrimSpace(value)
		}
	}
	return props
}

func processEnviron(pid int) (map[string]string, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, err
	}
	environ, err := p.Environ()
	if err != nil {
		return nil, err
	}
	return parseEnviron(environ), nil
}

func parseEnviron(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, entry := range environ {
		if key, value, ok := strings.Cut(entry, "="); ok && key != "" {
			env[key] = value
		}
	}
	return env
}

// detectDisplayFromSockets returns the display of the highest-numbered X
// socket in dir, or "" when there is none.
func detectDisplayFromSockets(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	best := -1
	for _, entry := range entries {
		num, ok := strings.CutPrefix(entry.Name(), "X")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(num); err == nil && n > best {
			best = n
		}
	}
	if best < 0 {
		return ""
	}
	return fmt.Sprintf(":%d", best)
}
