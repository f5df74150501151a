// Package progress reports completion percentage at fixed steps.
package progress

import "sync"

// DefaultStep is the percentage between two notifications
const DefaultStep = 10

// Update is passed to the callback when a step is crossed
type Update struct {
	Current int
	Total   int
	Percent float64
}

// Callback receives progress notifications
type Callback func(Update)

// Reporter counts completed units and notifies once per crossed step. It is
// safe for concurrent use. Callbacks run while the reporter is locked, so they
// are never concurrent with each other.
type Reporter struct {
	mu       sync.Mutex
	total    int
	step     int
	current  int
	notified int
	callback Callback
}

// New creates a reporter for total units. A step outside (0, 100] falls back
// to DefaultStep; a nil callback turns the reporter into a counter.
func New(total, step int, callback Callback) *Reporter {
	if step <= 0 || step > 100 {
		step = DefaultStep
	}
	return &Reporter{
		total:    total,
		step:     step,
		callback: callback,
	}
}

// Inc records one completed unit
func (r *Reporter) Inc() {
	r.Add(1)
}

// Add records n completed units. Progress never exceeds the total.
func (r *Reporter) Add(n int) {
	if n <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.total <= 0 {
		return
	}
	r.current = min(r.current+n, r.total)

	// Percent reached in whole steps; one notification even when several
	// steps are crossed at once.
	reached := r.current * 100 / r.total / r.step
	if reached <= r.notified {
		return
	}
	r.notified = reached

	if r.callback != nil {
		r.callback(Update{
			Current: r.current,
			Total:   r.total,
			Percent: r.percent(),
		})
	}
}

// Current returns the number of completed units
func (r *Reporter) Current() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Percent returns the completion percentage
func (r *Reporter) Percent() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.percent()
}

func (r *Reporter) percent() float64 {
	if r.total <= 0 {
		return 100
	}
	return float64(r.current) * 100 / float64(r.total)
}
