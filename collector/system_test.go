package collector

import (
	"testing"

	"github.com/shirou/gopsutil/v3/cpu"
	"gotest.tools/v3/assert"
)

func TestTicksFromTimes(t *testing.T) {
	ticks := ticksFromTimes(cpu.TimesStat{
		CPU:     "cpu-total",
		User:    47.05,
		Nice:    3.56,
		System:  5.84,
		Idle:    36991.76,
		Iowait:  230.6,
		Irq:     0,
		Softirq: 2.77,
		Steal:   0.12,
	})

	assert.Equal(t, ticks.User, uint64(4705))
	assert.Equal(t, ticks.Idle, uint64(3699176))
	assert.Equal(t, ticks.IOWait, uint64(23060))
	assert.Equal(t, ticks.Steal, uint64(12))
}

func TestToTicks_Negative(t *testing.T) {
	assert.Equal(t, toTicks(-1), uint64(0))
}
