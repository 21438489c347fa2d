package health

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"gorm.io/gorm"
)

type Snapshot struct {
	CollectedAt time.Time     `json:"collected_at"`
	CPU         CPUStats      `json:"cpu"`
	Memory      MemoryStats   `json:"memory"`
	Disk        *DiskStats    `json:"disk,omitempty"`
	Host        HostInfo      `json:"host"`
	Database    DatabaseStats `json:"database"`
}

type CPUStats struct {
	UsagePercent float64 `json:"usage_percent"`
	Cores        int     `json:"cores"`
}

type MemoryStats struct {
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	UsedPercent float64 `json:"used_percent"`
}

type DiskStats struct {
	Path        string  `json:"path"`
	Total       uint64  `json:"total"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

type HostInfo struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Platform string `json:"platform"`
	Uptime   uint64 `json:"uptime"`
}

type DatabaseStats struct {
	Dialect         string `json:"dialect"`
	Reachable       bool   `json:"reachable"`
	Error           string `json:"error,omitempty"`
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
}

// Collector samples host and database health. DataDir, when set, is the
// directory whose filesystem usage is reported.
type Collector struct {
	DB      *gorm.DB
	DataDir string
}

// Collect never fails; probes that error are left at their zero value,
// except the database probe which reports its error.
func (c *Collector) Collect(ctx context.Context) *Snapshot {
	snap := &Snapshot{CollectedAt: time.Now().UTC()}

	snap.CPU.Cores = runtime.NumCPU()
	if percent, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(percent) > 0 {
		snap.CPU.UsagePercent = percent[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		snap.Memory = MemoryStats{
			Total:       vm.Total,
			Used:        vm.Used,
			UsedPercent: vm.UsedPercent,
		}
	}

	if c.DataDir != "" {
		if usage, err := disk.UsageWithContext(ctx, c.DataDir); err == nil {
			snap.Disk = &DiskStats{
				Path:        c.DataDir,
				Total:       usage.Total,
				Free:        usage.Free,
				UsedPercent: usage.UsedPercent,
			}
		}
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		snap.Host = HostInfo{
			Hostname: info.Hostname,
			OS:       info.OS,
			Platform: info.Platform,
			Uptime:   info.Uptime,
		}
	}

	if c.DB != nil {
		snap.Database = probeDatabase(ctx, c.DB)
	}

	return snap
}

func probeDatabase(ctx context.Context, db *gorm.DB) DatabaseStats {
	stats := DatabaseStats{Dialect: db.Dialector.Name()}

	sqlDB, err := db.DB()
	if err != nil {
		stats.Error = err.Error()
		return stats
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		stats.Error = err.Error()
		return stats
	}

	dbStats := sqlDB.Stats()
	stats.Reachable = true
	stats.OpenConnections = dbStats.OpenConnections
	stats.InUse = dbStats.InUse
	return stats
}
