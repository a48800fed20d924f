package bpm

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OperationStats aggregates the timings of one named operation.
type OperationStats struct {
	Count        int           `json:"count"`
	TotalTime    time.Duration `json:"total_time"`
	AverageTime  time.Duration `json:"average_time"`
	OpsPerSecond float64       `json:"operations_per_second"`
}

// Profiler records how long lookup stages take.
type Profiler struct {
	mu  sync.Mutex
	now func() time.Time
	ops map[string]*OperationStats
}

func NewProfiler() *Profiler {
	return &Profiler{now: time.Now, ops: make(map[string]*OperationStats)}
}

// Track starts timing name; call the returned func when the operation ends.
func (p *Profiler) Track(name string) func() {
	if p == nil {
		return func() {}
	}
	start := p.now()
	return func() {
		p.record(name, p.now().Sub(start))
	}
}

func (p *Profiler) record(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.ops[name]
	if !ok {
		s = &OperationStats{}
		p.ops[name] = s
	}
	s.Count++
	s.TotalTime += d
}

// Summary returns a snapshot of every tracked operation.
func (p *Profiler) Summary() map[string]OperationStats {
	summary := make(map[string]OperationStats)
	if p == nil {
		return summary
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for name, s := range p.ops {
		out := *s
		if out.Count > 0 {
			out.AverageTime = out.TotalTime / time.Duration(out.Count)
		}
		if out.TotalTime > 0 {
			out.OpsPerSecond = float64(out.Count) / out.TotalTime.Seconds()
		}
		summary[name] = out
	}
	return summary
}

// Log writes the summary, one entry per operation in name order.
func (p *Profiler) Log(logger *zap.Logger) {
	summary := p.Summary()
	names := make([]string, 0, len(summary))
	for name := range summary {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := summary[name]
		logger.Info("operation timings",
			zap.String("operation", name),
			zap.Int("count", s.Count),
			zap.Duration("total", s.TotalTime),
			zap.Duration("average", s.AverageTime),
			zap.Float64("ops_per_second", s.OpsPerSecond))
	}
}
