package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"grant-desk/observability"
)

const heartbeatInterval = 30 * time.Second

// HeartbeatWorker periodically logs relay activity together with the
// process's own resource usage, giving operators a pulse without an
// external metrics stack.
type HeartbeatWorker struct {
	log   *slog.Logger
	stats *observability.RelayStats
}

func NewHeartbeatWorker(log *slog.Logger, stats *observability.RelayStats) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, stats: stats}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker")
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "error", err)
				continue
			}

			snapshot := w.stats.GetLatest()
			w.log.Info("Heartbeat",
				"live_connections", snapshot.LiveConnections,
				"messages_relayed", snapshot.MessagesRelayed,
				"copies_delivered", snapshot.CopiesDelivered,
				"copies_dropped", snapshot.CopiesDropped,
				"auth_failures", snapshot.AuthFailures,
				"malformed_frames", snapshot.MalformedFrames,
				"alloc_mem_mb", snapshot.AllocMemMb,
				"num_gc", snapshot.NumGC,
				"rss_bytes", rss,
				"cpu_percent", cpu,
			)
		}
	}
}

// selfStats retrieves memory and CPU usage of the current process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
