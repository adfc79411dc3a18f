package collector

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"diagd/models"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"
)

const (
	CPUNameFallback = "Can't determine CPU name"
	LoadFallback    = "Can't determine CPU load"
)

// Resources produces the payload of every supported resource path
type Resources struct {
	info   SystemInfo
	delay  time.Duration
	logger *zap.Logger

	hostname func() (string, error)
}

func NewResources(info SystemInfo, delay time.Duration, logger *zap.Logger) *Resources {
	return &Resources{
		info:     info,
		delay:    delay,
		logger:   logger,
		hostname: os.Hostname,
	}
}

// HostName returns the machine host name followed by a newline
func (r *Resources) HostName(ctx context.Context) []byte {
	name, err := r.hostname()
	if err != nil || name == "" {
		r.logger.Warn("os hostname failed, asking gopsutil", zap.Error(err))
		if hostInfo, herr := host.InfoWithContext(ctx); herr == nil && hostInfo.Hostname != "" {
			name = hostInfo.Hostname
		} else {
			name = "localhost"
		}
	}
	return []byte(name + "\n")
}

// CPUName returns the processor model, or a fixed fallback when it can't be found
func (r *Resources) CPUName(ctx context.Context) []byte {
	model, err := r.info.ProcessorModelName(ctx)
	if err != nil {
		r.logger.Warn("processor model lookup failed", zap.Error(err))
	}
	model = strings.Join(strings.Fields(model), " ")
	if model == "" {
		model = CPUNameFallback
	}
	return []byte(model + "\n")
}

// Load samples the CPU counters twice, r.delay apart, and reports the busy share.
// It blocks the caller for the whole delay.
func (r *Resources) Load(ctx context.Context) []byte {
	pct, err := r.measureLoad(ctx)
	if err != nil {
		r.logger.Warn("cpu load sampling failed", zap.Error(err))
		return []byte(LoadFallback + "\n")
	}
	return []byte(FormatLoad(pct))
}

func (r *Resources) measureLoad(ctx context.Context) (float64, error) {
	first, err := r.info.CPUTickSample(ctx)
	if err != nil {
		return 0, fmt.Errorf("first sample: %w", err)
	}

	if err := sleep(ctx, r.delay); err != nil {
		return 0, err
	}

	second, err := r.info.CPUTickSample(ctx)
	if err != nil {
		return 0, fmt.Errorf("second sample: %w", err)
	}

	return ComputeLoad(first, second), nil
}

// ComputeLoad returns the non-idle share of ticks elapsed between two samples, in percent.
// No elapsed ticks, or counters that went backwards, yield 0.
func ComputeLoad(first, second models.CPUSample) float64 {
	if second.Total <= first.Total {
		return 0
	}
	totalDelta := float64(second.Total - first.Total)

	var idleDelta float64
	if second.Idle > first.Idle {
		idleDelta = float64(second.Idle - first.Idle)
	}

	pct := (totalDelta - idleDelta) / totalDelta * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// FormatLoad renders a percentage as "12.34%\n"
func FormatLoad(pct float64) string {
	return fmt.Sprintf("%.2f%%\n", pct)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
