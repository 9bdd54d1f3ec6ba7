package system

import (
	"os"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// MemorySnapshot is what the performance report prints.
type MemorySnapshot struct {
	RSS       uint64
	Available uint64
	Total     uint64
}

// Memory samples the current process RSS and the host memory. Fields it
// cannot read stay zero.
func Memory() MemorySnapshot {
	var snap MemorySnapshot
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := p.MemoryInfo(); err == nil {
			snap.RSS = info.RSS
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.Available = vm.Available
		snap.Total = vm.Total
	}
	return snap
}

// CanvasBytes is the raster footprint of one RGBA canvas.
func CanvasBytes(width, height int) uint64 {
	if width <= 0 || height <= 0 {
		return 0
	}
	return uint64(width) * uint64(height) * 4
}
