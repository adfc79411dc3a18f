package collector

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"diagd/models"
)

var ErrMalformedStat = errors.New("malformed cpu stat line")

const (
	defaultModelNameCommand = `{ lscpu 2>/dev/null | grep -m1 -i '^model name' || grep -m1 -i '^model name' /proc/cpuinfo; } | cut -d: -f2-`
	defaultStatCommand      = `head -n 1 /proc/stat`
)

// ShellInfo implements SystemInfo by running text pipelines through sh
type ShellInfo struct {
	ModelNameCommand string
	StatCommand      string
	Timeout          time.Duration
}

func NewShellInfo(timeout time.Duration) *ShellInfo {
	return &ShellInfo{
		ModelNameCommand: defaultModelNameCommand,
		StatCommand:      defaultStatCommand,
		Timeout:          timeout,
	}
}

func (s *ShellInfo) ProcessorModelName(ctx context.Context) (string, error) {
	out, err := runPipeline(ctx, s.Timeout, s.ModelNameCommand)
	if err != nil {
		return "", err
	}
	return out, nil
}

func (s *ShellInfo) CPUTickSample(ctx context.Context) (models.CPUSample, error) {
	out, err := runPipeline(ctx, s.Timeout, s.StatCommand)
	if err != nil {
		return models.CPUSample{}, err
	}
	ticks, err := ParseProcStat(out)
	if err != nil {
		return models.CPUSample{}, err
	}
	return ticks.Sample(), nil
}

// ParseProcStat parses the aggregate "cpu" line of /proc/stat.
// Kernels older than 2.6.11 omit trailing fields; those count as zero.
func ParseProcStat(line string) (models.CPUTicks, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 || fields[0] != "cpu" {
		return models.CPUTicks{}, fmt.Errorf("%w: %q", ErrMalformedStat, strings.TrimSpace(line))
	}

	var vals [8]uint64
	for i := 0; i < len(vals) && i+1 < len(fields); i++ {
		v, err := strconv.ParseUint(fields[i+1], 10, 64)
		if err != nil {
			return models.CPUTicks{}, fmt.Errorf("%w: field %d: %v", ErrMalformedStat, i+1, err)
		}
		vals[i] = v
	}

	return models.CPUTicks{
		User:    vals[0],
		Nice:    vals[1],
		System:  vals[2],
		Idle:    vals[3],
		IOWait:  vals[4],
		IRQ:     vals[5],
		SoftIRQ: vals[6],
		Steal:   vals[7],
	}, nil
}

// runPipeline executes a shell pipeline and returns its trimmed stdout
func runPipeline(ctx context.Context, timeout time.Duration, pipeline string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", pipeline)
	// children of sh may hold stdout open after sh is killed
	cmd.WaitDelay = 500 * time.Millisecond

	out, err := cmd.Output()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("sh -c %q: timeout", pipeline)
	}
	if err != nil {
		return "", fmt.Errorf("sh -c %q: %w", pipeline, err)
	}
	return strings.TrimSpace(string(out)), nil
}
