package searcher

import (
	"sync/atomic"
	"time"
)

// SearchMetric describes one ComputeMove run.
type SearchMetric struct {
	Goroutines int
	StartTime  time.Time
	Duration   time.Duration
	Playouts   int64
}

// PerSecond is the playout throughput of the run.
func (s SearchMetric) PerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Playouts) / s.Duration.Seconds()
}

// Collector accumulates statistics over one search. Implementations must
// be safe for concurrent use by worker goroutines.
type Collector interface {
	Start(goroutines int)
	AddPlayout()
	Complete() SearchMetric
}

type collector struct {
	goroutines int
	startTime  time.Time
	playouts   atomic.Int64
}

// NewCollector returns a Collector backed by atomic counters.
func NewCollector() Collector {
	return &collector{}
}

func (c *collector) Start(goroutines int) {
	c.startTime = time.Now()
	c.goroutines = goroutines
	c.playouts.Store(0)
}

func (c *collector) AddPlayout() {
	c.playouts.Add(1)
}

func (c *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines: c.goroutines,
		StartTime:  c.startTime,
		Duration:   time.Since(c.startTime),
		Playouts:   c.playouts.Load(),
	}
}

type dummyCollector struct{}

// NewDummyCollector returns a Collector that records nothing.
func NewDummyCollector() Collector {
	return dummyCollector{}
}

func (dummyCollector) Start(goroutines int)   {}
func (dummyCollector) AddPlayout()            {}
func (dummyCollector) Complete() SearchMetric { return SearchMetric{} }
