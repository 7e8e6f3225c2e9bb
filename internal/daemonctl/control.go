package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"nimbus/internal/config"
	"nimbus/internal/preflight"
)

const pollInterval = 200 * time.Millisecond

// ErrNotRunning indicates no monitor holds the instance lock.
var ErrNotRunning = errors.New("monitor not running")

// LaunchOptions controls detached monitor launch behavior.
type LaunchOptions struct {
	ConfigPath string
	LogLevel   string
}

type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
)

// StartResult captures monitor start orchestration state.
type StartResult struct {
	State StartState
	PID   int
}

// StopResult captures monitor stop/termination outcome.
type StopResult struct {
	PID        int
	ForcedKill bool
}

// Launch starts a detached "nimbus start" process.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return fmt.Errorf("resolve executable: executable path is empty")
	}

	args := []string{"start"}
	if cfg := strings.TrimSpace(opts.ConfigPath); cfg != "" {
		args = append(args, "--config", cfg)
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		args = append(args, "--log-level", level)
	}

	proc := exec.Command(executablePath, args...)
	proc.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch monitor: %w", err)
	}
	return proc.Process.Release()
}

// WaitForStart polls until a monitor holds the instance lock.
func WaitForStart(cfg *config.Config, timeout time.Duration) (preflight.MonitorProbe, error) {
	deadline := time.Now().Add(timeout)
	for {
		probe, err := preflight.ProbeMonitor(cfg)
		if err != nil {
			return probe, err
		}
		if probe.Running {
			return probe, nil
		}
		if time.Now().After(deadline) {
			return probe, fmt.Errorf("monitor failed to start within %s (see %s)", timeout, cfg.Paths.LogDir)
		}
		time.Sleep(pollInterval)
	}
}

// EnsureStarted launches a monitor unless one is already running.
func EnsureStarted(cfg *config.Config, executablePath string, opts LaunchOptions, waitTimeout time.Duration) (StartResult, error) {
	probe, err := preflight.ProbeMonitor(cfg)
	if err != nil {
		return StartResult{}, err
	}
	if probe.Running {
		return StartResult{State: StartStateAlreadyRunning, PID: probe.PID}, nil
	}
	if err := Launch(executablePath, opts); err != nil {
		return StartResult{}, err
	}
	probe, err = WaitForStart(cfg, waitTimeout)
	if err != nil {
		return StartResult{}, err
	}
	return StartResult{State: StartStateStarted, PID: probe.PID}, nil
}

// WaitForShutdown waits for the instance lock to be released.
func WaitForShutdown(cfg *config.Config, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		probe, err := preflight.ProbeMonitor(cfg)
		if err != nil {
			return err
		}
		if !probe.Running {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("monitor still running after %s", timeout)
		}
		time.Sleep(pollInterval)
	}
}

// Stop sends SIGTERM to the running monitor and force-kills it if the lock is
// still held after gracePeriod.
func Stop(cfg *config.Config, gracePeriod time.Duration) (StopResult, error) {
	probe, err := preflight.ProbeMonitor(cfg)
	if err != nil {
		return StopResult{}, err
	}
	if !probe.Running {
		return StopResult{}, ErrNotRunning
	}
	pid, err := readPID(cfg.PIDPath())
	if err != nil {
		return StopResult{}, err
	}
	if pid == os.Getpid() {
		return StopResult{}, fmt.Errorf("refusing to signal current process (pid %d)", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return StopResult{}, fmt.Errorf("locate monitor process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return StopResult{}, fmt.Errorf("signal monitor process %d: %w", pid, err)
	}

	result := StopResult{PID: pid}
	if err := WaitForShutdown(cfg, gracePeriod); err == nil {
		return result, nil
	}

	killedPID, err := ForceKillProcess(cfg.PIDPath(), pid)
	if err != nil {
		return result, fmt.Errorf("failed to stop monitor process: %w", err)
	}
	result.ForcedKill = true
	result.PID = killedPID
	return result, nil
}

// ForceKillProcess sends SIGKILL to the monitor process and removes its pid
// file. The lock file is left alone; flock locks die with their holder.
func ForceKillProcess(pidPath string, fallbackPID int) (int, error) {
	pid := fallbackPID
	if parsed, err := readPID(pidPath); err == nil {
		pid = parsed
	} else if !errors.Is(err, os.ErrNotExist) {
		return 0, err
	}
	if pid <= 0 {
		return 0, fmt.Errorf("unable to determine monitor pid (pid file: %s)", pidPath)
	}
	if pid == os.Getpid() {
		return 0, fmt.Errorf("refusing to kill current process (pid %d)", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("locate monitor process %d: %w", pid, err)
	}
	if err := proc.Kill(); err != nil {
		return 0, fmt.Errorf("kill monitor process %d: %w", pid, err)
	}
	if err := os.Remove(pidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("remove pid file %q: %w", pidPath, err)
	}
	return pid, nil
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read monitor pid file %q: %w", path, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("monitor pid file %q is malformed", path)
	}
	return pid, nil
}
