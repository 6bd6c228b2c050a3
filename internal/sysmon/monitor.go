package sysmon

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/Gopinath21052006/NeuroTrain/pkg/types"
)

// Monitor reads host resource usage via gopsutil.
type Monitor struct {
	diskPath string
}

// NewMonitor creates a monitor sampling disk usage at the filesystem root.
func NewMonitor() *Monitor {
	return &Monitor{diskPath: "/"}
}

// Stats returns a snapshot of CPU, memory and disk usage.
func (m *Monitor) Stats(ctx context.Context) (*types.SystemStats, error) {
	cpuPercents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu usage: %w", err)
	}
	var cpuPercent float64
	if len(cpuPercents) > 0 {
		cpuPercent = cpuPercents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read memory usage: %w", err)
	}

	du, err := disk.UsageWithContext(ctx, m.diskPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read disk usage: %w", err)
	}

	return &types.SystemStats{
		CPUPercent:    cpuPercent,
		MemoryPercent: vm.UsedPercent,
		MemoryUsed:    vm.Used,
		MemoryTotal:   vm.Total,
		DiskPercent:   du.UsedPercent,
	}, nil
}
