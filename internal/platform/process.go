//go:build linux

package platform

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
)

func processExePath(pid int) (string, error) {
	if pid <= 0 {
		return "", CallFailed("process.NewProcess", 0, 0, fmt.Errorf("invalid pid %d", pid))
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", CallFailed("process.NewProcess", 0, 0, fmt.Errorf("pid %d: %w", pid, err))
	}
	exe, err := p.Exe()
	if err != nil {
		return "", CallFailed("process.Exe", 0, 0, fmt.Errorf("pid %d: %w", pid, err))
	}
	return exe, nil
}
