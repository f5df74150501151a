// Package executor runs batches of independent tasks with a bounded number in
// flight.
package executor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"twharvest/pkg/logger"
)

const (
	// MinConcurrency runs tasks strictly one after another
	MinConcurrency = 1
	// MaxConcurrency caps simultaneous scraper processes
	MaxConcurrency = 8
)

// Clamp maps a requested concurrency onto [MinConcurrency, MaxConcurrency]
func Clamp(requested int) int {
	return min(max(requested, MinConcurrency), MaxConcurrency)
}

// Task is one unit of work. Name is only used for logging.
type Task[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Result is the outcome of one task. Index is the task's position in the
// submitted batch.
type Result[T any] struct {
	Index    int
	Name     string
	Value    T
	Err      error
	Duration time.Duration
}

// Pool executes task batches with a fixed in-flight limit
type Pool struct {
	limit  int
	logger logger.Logger
}

// NewPool creates a pool running at most Clamp(requested) tasks at once
func NewPool(requested int, log logger.Logger) *Pool {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Pool{
		limit:  Clamp(requested),
		logger: log,
	}
}

// Limit returns the effective in-flight limit
func (p *Pool) Limit() int {
	return p.limit
}

// Run executes every task and returns one result per task. A failing task
// never cancels or blocks its siblings; its error is reported in its result.
// Results are stored by index, but callers should treat them as unordered.
func Run[T any](ctx context.Context, p *Pool, tasks []Task[T]) []Result[T] {
	results := make([]Result[T], len(tasks))
	if len(tasks) == 0 {
		return results
	}

	p.logger.DebugWithFields("Running task batch", map[string]interface{}{
		"tasks": len(tasks),
		"limit": p.limit,
	})

	// Task errors stay in their results; the group only bounds concurrency
	var g errgroup.Group
	g.SetLimit(p.limit)

	for i, task := range tasks {
		g.Go(func() error {
			results[i] = runTask(ctx, p.logger, i, task)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func runTask[T any](ctx context.Context, log logger.Logger, index int, task Task[T]) Result[T] {
	start := time.Now()
	value, err := task.Run(ctx)
	result := Result[T]{
		Index:    index,
		Name:     task.Name,
		Value:    value,
		Err:      err,
		Duration: time.Since(start),
	}

	if err != nil {
		log.DebugWithFields("Task failed", map[string]interface{}{
			"task":     task.Name,
			"error":    err.Error(),
			"duration": result.Duration,
		})
	} else {
		log.DebugWithFields("Task completed", map[string]interface{}{
			"task":     task.Name,
			"duration": result.Duration,
		})
	}
	return result
}
