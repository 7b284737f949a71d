// Package profiler logs frame rate and memory statistics.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-view/engine/logging"
)

// Sample is one reporting interval of the profiler.
type Sample struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPause   time.Duration
	MaxPause    time.Duration
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats through the logger at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Sample

	now func() time.Time
	log func(Sample)
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: a variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		log:            logSample,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs a Sample when the update interval has elapsed.
//
// Returns:
//   - bool: true if a sample was logged this tick
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Sample{
		FPS:     float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:  float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:   float64(p.memStats.Sys) / 1024 / 1024,
		GCCount: p.memStats.NumGC,
	}
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	if gc := p.memStats.NumGC; gc > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		s.LastPause = time.Duration(p.memStats.PauseNs[(gc-1)%256])
		start := p.lastGCCount
		if gc-start > 256 {
			start = gc - 256
		}
		for i := start; i < gc; i++ {
			s.MaxPause = max(s.MaxPause, time.Duration(p.memStats.PauseNs[i%256]))
		}
	}

	p.log(s)
	p.last = s
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recent sample, zero before the first.
func (p *Profiler) Last() Sample {
	return p.last
}

func logSample(s Sample) {
	logging.Info("profiler",
		"fps", s.FPS,
		"heap_mb", s.HeapMB,
		"alloc_rate_mb", s.AllocRateMB,
		"gc", s.GCCount,
		"gc_last", s.LastPause,
		"gc_max", s.MaxPause,
		"sys_mb", s.SysMB,
	)
}
