package profiler

import (
	"log/slog"
	"runtime"
	"time"
)

// Stats is one interval's worth of tick and memory statistics.
type Stats struct {
	TicksPerSecond float64
	HeapMB         float64
	AllocRateMBps  float64
	GCCount        uint32
	LastPauseUs    uint64
	MaxPauseUs     uint64
	SysMB          float64
}

// Profiler tracks tick rate and memory statistics for performance monitoring.
// Logs stats at Info at a configurable interval.
type Profiler struct {
	logger         *slog.Logger
	tickCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
}

// NewProfiler creates a new Profiler that logs to logger every interval.
// A nil logger discards output and an interval <= 0 defaults to 1 second.
//
// Parameters:
//   - logger: receives the statistics
//   - interval: how often statistics are computed
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *slog.Logger, interval time.Duration) *Profiler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		logger:         logger,
		lastTime:       time.Now(),
		updateInterval: interval,
	}
}

// Tick should be called once per engine tick.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.tickCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap; TotalAlloc only grows and tracks churn; Sys is the process footprint.
	stats := Stats{
		TicksPerSecond: float64(p.tickCount) / elapsed.Seconds(),
		HeapMB:         float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMBps:  float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:        p.memStats.NumGC,
		SysMB:          float64(p.memStats.Sys) / 1024 / 1024,
	}

	if gcCount := stats.GCCount; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		stats.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			stats.MaxPauseUs = max(stats.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Info("profiler",
		slog.Float64("tps", stats.TicksPerSecond),
		slog.Float64("heap_mb", stats.HeapMB),
		slog.Float64("alloc_mb_s", stats.AllocRateMBps),
		slog.Uint64("gc", uint64(stats.GCCount)),
		slog.Uint64("gc_last_us", stats.LastPauseUs),
		slog.Uint64("gc_max_us", stats.MaxPauseUs),
		slog.Float64("sys_mb", stats.SysMB),
	)

	p.tickCount = 0
	p.lastTime = currentTime
	p.lastGCCount = stats.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.last = stats
	return true
}

// Last returns the statistics from the most recent interval.
//
// Returns:
//   - Stats: zero until the first interval has elapsed
func (p *Profiler) Last() Stats {
	return p.last
}
