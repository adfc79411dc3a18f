package collector

import (
	"context"
	"fmt"
	"math"

	"diagd/models"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

// userHZ is the tick rate the kernel exposes to userspace.
// gopsutil reports seconds; converting back keeps samples in ticks.
const userHZ = 100

// SystemInfo is the narrow view of the OS the resource providers need
type SystemInfo interface {
	ProcessorModelName(ctx context.Context) (string, error)
	CPUTickSample(ctx context.Context) (models.CPUSample, error)
}

// HostInfo implements SystemInfo on top of gopsutil
type HostInfo struct{}

func NewHostInfo() *HostInfo {
	return &HostInfo{}
}

func (h *HostInfo) ProcessorModelName(ctx context.Context) (string, error) {
	info, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("cpu info: %w", err)
	}
	for _, i := range info {
		if i.ModelName != "" {
			return i.ModelName, nil
		}
	}
	return "", nil
}

func (h *HostInfo) CPUTickSample(ctx context.Context) (models.CPUSample, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return models.CPUSample{}, fmt.Errorf("cpu times: %w", err)
	}
	if len(times) == 0 {
		return models.CPUSample{}, fmt.Errorf("cpu times: %w", ErrMalformedStat)
	}
	return ticksFromTimes(times[0]).Sample(), nil
}

func ticksFromTimes(t cpu.TimesStat) models.CPUTicks {
	return models.CPUTicks{
		User:    toTicks(t.User),
		Nice:    toTicks(t.Nice),
		System:  toTicks(t.System),
		Idle:    toTicks(t.Idle),
		IOWait:  toTicks(t.Iowait),
		IRQ:     toTicks(t.Irq),
		SoftIRQ: toTicks(t.Softirq),
		Steal:   toTicks(t.Steal),
	}
}

func toTicks(seconds float64) uint64 {
	if seconds <= 0 {
		return 0
	}
	return uint64(math.Round(seconds * userHZ))
}

// CollectSystemInfo gathers OS details for the startup banner
func CollectSystemInfo(ctx context.Context) models.SystemInfo {
	var info models.SystemInfo
	if hostInfo, err := host.InfoWithContext(ctx); err == nil {
		info = models.SystemInfo{
			Hostname: hostInfo.Hostname,
			OS:       hostInfo.OS + " " + hostInfo.Platform + " " + hostInfo.PlatformVersion,
			Kernel:   hostInfo.KernelVersion,
			Arch:     hostInfo.KernelArch,
		}
	}
	return info
}
