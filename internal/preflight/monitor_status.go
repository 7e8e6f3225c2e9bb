package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"nimbus/internal/config"
)

// MonitorProbe reports whether a monitor process currently holds the
// single-instance lock.
type MonitorProbe struct {
	Running bool
	PID     int
	LogPath string
}

// ProbeMonitor inspects the lock, pid file and current log pointer without
// disturbing a running monitor. The lock is only held for the duration of
// the probe when nobody else owns it.
func ProbeMonitor(cfg *config.Config) (MonitorProbe, error) {
	var probe MonitorProbe
	if cfg == nil {
		return probe, nil
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return probe, fmt.Errorf("probe monitor lock: %w", err)
	}
	if locked {
		_ = lock.Unlock()
	} else {
		probe.Running = true
	}

	if probe.Running {
		if data, err := os.ReadFile(cfg.PIDPath()); err == nil {
			if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
				probe.PID = pid
			}
		}
	}

	pointer := filepath.Join(cfg.Paths.LogDir, "nimbus.log")
	if target, err := filepath.EvalSymlinks(pointer); err == nil {
		probe.LogPath = target
	}
	return probe, nil
}

// Detail renders a display-friendly summary for status output.
func (p MonitorProbe) Detail() string {
	if !p.Running {
		return "Not running"
	}
	if p.PID > 0 {
		return fmt.Sprintf("Running (pid %d)", p.PID)
	}
	return "Running"
}
