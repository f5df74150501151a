package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(updates *[]Update) Callback {
	return func(u Update) { *updates = append(*updates, u) }
}

func TestReporterSteps(t *testing.T) {
	var updates []Update
	r := New(20, 10, collect(&updates))

	for i := 0; i < 20; i++ {
		r.Inc()
	}

	require.Len(t, updates, 10)
	assert.Equal(t, Update{Current: 2, Total: 20, Percent: 10}, updates[0])
	assert.Equal(t, Update{Current: 20, Total: 20, Percent: 100}, updates[9])
	assert.Equal(t, 20, r.Current())
	assert.Equal(t, 100.0, r.Percent())
}

func TestReporterCoarseTotal(t *testing.T) {
	var updates []Update
	r := New(3, 5, collect(&updates))

	r.Inc()
	r.Inc()
	r.Inc()

	// Each unit crosses several 5% steps but notifies once
	require.Len(t, updates, 3)
	assert.Equal(t, 1, updates[0].Current)
	assert.InDelta(t, 33.33, updates[0].Percent, 0.01)
	assert.Equal(t, 100.0, updates[2].Percent)
}

func TestReporterNoNotificationBelowStep(t *testing.T) {
	var updates []Update
	r := New(1000, 10, collect(&updates))

	r.Add(99)
	assert.Empty(t, updates)

	r.Add(1)
	require.Len(t, updates, 1)
	assert.Equal(t, 100, updates[0].Current)
}

func TestReporterClampsOvershoot(t *testing.T) {
	var updates []Update
	r := New(4, 50, collect(&updates))

	r.Add(10)
	r.Add(1)

	require.Len(t, updates, 1)
	assert.Equal(t, 4, r.Current())
}

func TestReporterDefaults(t *testing.T) {
	var updates []Update
	r := New(10, 0, collect(&updates))
	for i := 0; i < 10; i++ {
		r.Inc()
	}
	assert.Len(t, updates, 10)

	// Zero total and nil callback are inert
	empty := New(0, 10, nil)
	empty.Inc()
	assert.Equal(t, 0, empty.Current())
	assert.Equal(t, 100.0, empty.Percent())
	r.Add(-1)
}

func TestReporterConcurrent(t *testing.T) {
	var mu sync.Mutex
	count := 0
	r := New(100, 10, func(Update) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Inc()
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, count)
	assert.Equal(t, 100, r.Current())
}
