package metrics

import (
	"context"
	"github.com/go-errors/errors"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"runtime"
	"time"
)

// Snapshot is one sample of device health.
type Snapshot struct {
	Time           time.Time `json:"time"`
	UptimeSeconds  uint64    `json:"uptimeSeconds"`
	Load1          float64   `json:"load1"`
	MemTotal       uint64    `json:"memTotal"`
	MemAvailable   uint64    `json:"memAvailable"`
	MemUsedPercent float64   `json:"memUsedPercent"`
	HeapAlloc      uint64    `json:"heapAlloc"`
	HeapSys        uint64    `json:"heapSys"`
	NumGoroutine   int       `json:"numGoroutine"`
}

// Collect takes one sample.
func Collect(ctx context.Context) (*Snapshot, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, errors.Errorf("could not read memory stats: %v", err)
	}

	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return nil, errors.Errorf("could not read load average: %v", err)
	}

	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		return nil, errors.Errorf("could not read uptime: %v", err)
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return &Snapshot{
		Time:           time.Now(),
		UptimeSeconds:  uptime,
		Load1:          avg.Load1,
		MemTotal:       vm.Total,
		MemAvailable:   vm.Available,
		MemUsedPercent: vm.UsedPercent,
		HeapAlloc:      ms.HeapAlloc,
		HeapSys:        ms.HeapSys,
		NumGoroutine:   runtime.NumGoroutine(),
	}, nil
}
