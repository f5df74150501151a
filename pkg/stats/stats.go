// Package stats records named counters and per-account failures of a harvest.
package stats

import (
	"maps"
	"slices"
	"sync"
)

// Counter names written by a harvest
const (
	Total   = "total"
	Success = "success"
	Fetched = "fetched"
)

// Failure ties a failed account back to the term it was requested with
type Failure struct {
	Term   string `json:"term" yaml:"term"`
	Reason string `json:"reason" yaml:"reason"`
}

// Recorder receives counters and failures. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Count(name string)
	Add(name string, n int)
	Fail(term, reason string)
}

// Snapshot is a point-in-time copy of a Collector
type Snapshot struct {
	Counters map[string]int `json:"counters" yaml:"counters"`
	Failures []Failure      `json:"failures" yaml:"failures"`
}

// Get returns a counter, zero when it was never written
func (s Snapshot) Get(name string) int {
	return s.Counters[name]
}

// Collector is an in-memory Recorder
type Collector struct {
	mu       sync.Mutex
	counters map[string]int
	failures []Failure
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{counters: make(map[string]int)}
}

func (c *Collector) Count(name string) {
	c.Add(name, 1)
}

func (c *Collector) Add(name string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[name] += n
}

func (c *Collector) Fail(term, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, Failure{Term: term, Reason: reason})
}

// Snapshot copies the current state
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Counters: maps.Clone(c.counters),
		Failures: slices.Clone(c.failures),
	}
}

// Discard drops everything it is given
var Discard Recorder = discard{}

type discard struct{}

func (discard) Count(string)        {}
func (discard) Add(string, int)     {}
func (discard) Fail(string, string) {}
