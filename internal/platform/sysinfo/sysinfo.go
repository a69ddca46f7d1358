// Package sysinfo describes the machine a selection run was computed on.
package sysinfo

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"site-selection-service/internal/domain"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

const unknown = "unknown"

// Collect returns platform, CPU model and total memory. Probes that fail
// degrade to "unknown" so a run is never blocked on host introspection.
func Collect(ctx context.Context) domain.SysInfo {
	info := domain.SysInfo{
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		CPU:      unknown,
		RAM:      unknown,
	}

	if h, err := host.InfoWithContext(ctx); err == nil && h.Platform != "" {
		info.Platform = strings.TrimSpace(fmt.Sprintf("%s %s %s/%s", h.Platform, h.PlatformVersion, h.OS, h.KernelArch))
	}

	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		cores, err := cpu.CountsWithContext(ctx, true)
		if err != nil || cores <= 0 {
			cores = runtime.NumCPU()
		}
		info.CPU = fmt.Sprintf("%s (%d threads)", strings.TrimSpace(cpus[0].ModelName), cores)
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.RAM = FormatBytes(vm.Total)
	}

	return info
}

// FormatBytes renders a byte count in binary units with one decimal.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
