package models

// SystemInfo holds OS details reported once at startup
type SystemInfo struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Kernel   string `json:"kernel"`
	Arch     string `json:"arch"`
}

// CPUSample is one probe of the aggregate CPU tick counters.
// Idle covers idle+iowait, NonIdle covers user+nice+system+irq+softirq+steal.
type CPUSample struct {
	Idle    uint64 `json:"idle"`
	NonIdle uint64 `json:"nonIdle"`
	Total   uint64 `json:"total"`
}

// CPUTicks holds the raw per-field counters of the aggregate cpu line
type CPUTicks struct {
	User    uint64
	Nice    uint64
	System  uint64
	Idle    uint64
	IOWait  uint64
	IRQ     uint64
	SoftIRQ uint64
	Steal   uint64
}

// Sample reduces the raw counters to an idle/non-idle split
func (t CPUTicks) Sample() CPUSample {
	idle := t.Idle + t.IOWait
	nonIdle := t.User + t.Nice + t.System + t.IRQ + t.SoftIRQ + t.Steal
	return CPUSample{
		Idle:    idle,
		NonIdle: nonIdle,
		Total:   idle + nonIdle,
	}
}
