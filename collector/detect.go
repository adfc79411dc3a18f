package collector

import (
	"os"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Capabilities struct {
	HasProcStat bool
	HasShell    bool
	HasLscpu    bool
}

var (
	caps     Capabilities
	capsOnce sync.Once
)

// DetectCapabilities probes the host once and logs what the shell backend can rely on
func DetectCapabilities(logger *zap.Logger) Capabilities {
	capsOnce.Do(func() {
		caps = Capabilities{
			HasProcStat: fileExists("/proc/stat"),
			HasShell:    commandExists("sh"),
			HasLscpu:    commandExists("lscpu"),
		}

		logger.Info("Host capabilities",
			zap.Bool("proc_stat", caps.HasProcStat),
			zap.Bool("shell", caps.HasShell),
			zap.Bool("lscpu", caps.HasLscpu),
		)
	})
	return caps
}

// ShellUsable reports whether the shell backend can produce tick samples
func (c Capabilities) ShellUsable() bool {
	return c.HasShell && c.HasProcStat
}

// NewSystemInfo picks a backend, falling back to gopsutil when the shell one can't work here
func NewSystemInfo(preferShell bool, timeout time.Duration, c Capabilities, logger *zap.Logger) SystemInfo {
	if preferShell {
		if c.ShellUsable() {
			logger.Info("System info backend selected", zap.String("backend", "shell"))
			return NewShellInfo(timeout)
		}
		logger.Warn("Shell backend unavailable, using gopsutil",
			zap.Bool("proc_stat", c.HasProcStat),
			zap.Bool("shell", c.HasShell),
		)
	}
	logger.Info("System info backend selected", zap.String("backend", "gopsutil"))
	return NewHostInfo()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
