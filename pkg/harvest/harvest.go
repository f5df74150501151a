// Package harvest runs a job over a batch of account references: it picks a
// strategy per account, fetches through the external scraper and normalizes
// the results.
package harvest

import (
	"context"
	"fmt"
	"time"

	"twharvest/internal/executor"
	"twharvest/pkg/config"
	"twharvest/pkg/handle"
	"twharvest/pkg/ingest"
	"twharvest/pkg/interval"
	"twharvest/pkg/logger"
	"twharvest/pkg/models"
	"twharvest/pkg/normalize"
	"twharvest/pkg/probe"
	"twharvest/pkg/progress"
	"twharvest/pkg/retry"
	"twharvest/pkg/stats"
	"twharvest/pkg/strategy"
)

// Fetcher runs one scraper request. A nil window requests the full profile.
type Fetcher interface {
	Ingest(ctx context.Context, h handle.Handle, window *interval.Window) ([]ingest.RawRecord, error)
}

// ProgressFunc receives interval scan progress for one account
type ProgressFunc func(h handle.Handle, u progress.Update)

// Options wires a Job. Fetcher and Selector are required.
type Options struct {
	Fetcher      Fetcher
	Selector     *strategy.Selector
	Mode         strategy.Mode
	Concurrency  int
	Retry        *retry.Config
	Stats        stats.Recorder
	ProgressStep int
	OnProgress   ProgressFunc
	Logger       logger.Logger
	// Now fixes the reference instant of interval plans; defaults to time.Now
	Now func() time.Time
}

// Result is what a job produced. Records are in no particular order.
type Result struct {
	Records  []models.Record
	Total    int
	Success  int
	Failures []stats.Failure
}

// Job processes account references one after another; the windows of an
// interval scan run concurrently.
type Job struct {
	fetcher      Fetcher
	selector     *strategy.Selector
	mode         strategy.Mode
	pool         *executor.Pool
	retrier      *retry.Retrier
	stats        stats.Recorder
	progressStep int
	onProgress   ProgressFunc
	logger       logger.Logger
	now          func() time.Time
}

// New creates a job from opts
func New(opts Options) *Job {
	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	rec := opts.Stats
	if rec == nil {
		rec = stats.Discard
	}

	selector := opts.Selector
	if selector == nil {
		selector = strategy.NewSelector(nil, strategy.DefaultThreshold, log)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	onProgress := opts.OnProgress
	if onProgress == nil {
		onProgress = func(h handle.Handle, u progress.Update) {
			logger.LogScanProgress(log, string(h), u.Current, u.Total, u.Percent)
		}
	}

	return &Job{
		fetcher:      opts.Fetcher,
		selector:     selector,
		mode:         opts.Mode,
		pool:         executor.NewPool(opts.Concurrency, log),
		retrier:      retry.NewRetrier(opts.Retry).WithLogger(log),
		stats:        rec,
		progressStep: opts.ProgressStep,
		onProgress:   onProgress,
		logger:       log,
		now:          now,
	}
}

// NewFromConfig wires a job running the configured scraper executable and
// probing profile pages over HTTP in auto mode
func NewFromConfig(cfg *config.Config, rec stats.Recorder, log logger.Logger) (*Job, error) {
	mode, err := strategy.ParseMode(cfg.Scraper.StrategyMode)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	var selector *strategy.Selector
	if mode == strategy.Auto {
		selector = strategy.NewSelector(probe.NewClient(cfg.Probe, log), cfg.Probe.Threshold, log)
	}

	backoff, err := retry.NewBackoff(cfg.Retry)
	if err != nil {
		return nil, err
	}
	retryCfg := &retry.Config{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Backoff:     backoff,
		Logger:      log,
	}

	return New(Options{
		Fetcher:      ingest.New(cfg.Scraper.Executable, cfg.Scraper.ScratchDir, log),
		Selector:     selector,
		Mode:         mode,
		Concurrency:  cfg.Scraper.Concurrency,
		Retry:        retryCfg,
		Stats:        rec,
		ProgressStep: cfg.Progress.Step,
		Logger:       log,
	}), nil
}

// WithProgress returns a copy of the job reporting interval scan progress to fn
func (j *Job) WithProgress(fn ProgressFunc) *Job {
	c := *j
	c.onProgress = fn
	return &c
}

// Run harvests every reference. It never fails as a whole: an account whose
// fetch fails is recorded in Failures and contributes no records.
func (j *Job) Run(ctx context.Context, refs []handle.Reference) Result {
	start := time.Now()
	logger.LogComponentStart(j.logger, "harvest", map[string]interface{}{
		"accounts":    len(refs),
		"mode":        j.mode.String(),
		"concurrency": j.pool.Limit(),
		"attempts":    j.retrier.MaxAttempts(),
	})

	res := Result{Records: []models.Record{}}
	for _, ref := range refs {
		res.Total++
		j.stats.Count(stats.Total)

		records, err := j.harvestAccount(ctx, ref)
		if err != nil {
			term := ref.String()
			j.logger.WithError(err).ErrorWithFields("Failed to harvest account", map[string]interface{}{
				"term": term,
			})
			j.stats.Fail(term, err.Error())
			res.Failures = append(res.Failures, stats.Failure{Term: term, Reason: err.Error()})
			continue
		}

		res.Success++
		j.stats.Count(stats.Success)
		j.stats.Add(stats.Fetched, len(records))
		res.Records = append(res.Records, records...)
	}

	j.logger.InfoWithFields("Harvest completed", map[string]interface{}{
		"total":    res.Total,
		"success":  res.Success,
		"failed":   len(res.Failures),
		"records":  len(res.Records),
		"duration": time.Since(start),
	})
	return res
}

func (j *Job) harvestAccount(ctx context.Context, ref handle.Reference) ([]models.Record, error) {
	h := handle.Resolve(ref)
	chosen := j.selector.Select(ctx, h, j.mode)

	j.logger.InfoWithFields("Harvesting account", map[string]interface{}{
		"term":     ref.String(),
		"handle":   string(h),
		"strategy": chosen.String(),
	})

	var (
		raws []ingest.RawRecord
		err  error
	)
	switch chosen {
	case strategy.StrategyProfile:
		raws, err = j.fetchProfile(ctx, h)
	default:
		raws, err = j.fetchIntervals(ctx, h)
	}
	if err != nil {
		return nil, err
	}

	j.logger.InfoWithFields("Account harvested", map[string]interface{}{
		"handle": string(h),
		"tweets": len(raws),
	})
	return normalize.All(raws, normalize.NewQuery(ref.String())), nil
}

func (j *Job) fetchProfile(ctx context.Context, h handle.Handle) ([]ingest.RawRecord, error) {
	return retry.Attempt(ctx, j.retrier, func(ctx context.Context) ([]ingest.RawRecord, error) {
		return j.fetcher.Ingest(ctx, h, nil)
	})
}

// fetchIntervals scans every weekly window. Failed windows are logged and
// skipped; the account only fails when no window succeeded.
func (j *Job) fetchIntervals(ctx context.Context, h handle.Handle) ([]ingest.RawRecord, error) {
	windows := interval.Windows(j.now())
	if len(windows) == 0 {
		return []ingest.RawRecord{}, nil
	}

	reporter := progress.New(len(windows), j.progressStep, func(u progress.Update) {
		j.onProgress(h, u)
	})

	tasks := make([]executor.Task[[]ingest.RawRecord], len(windows))
	for i, w := range windows {
		tasks[i] = executor.Task[[]ingest.RawRecord]{
			Name: fmt.Sprintf("%s %s", h, w),
			Run: func(ctx context.Context) ([]ingest.RawRecord, error) {
				defer reporter.Inc()
				return retry.Attempt(ctx, j.retrier, func(ctx context.Context) ([]ingest.RawRecord, error) {
					return j.fetcher.Ingest(ctx, h, &w)
				})
			},
		}
	}

	var (
		raws    []ingest.RawRecord
		failed  int
		lastErr error
	)
	for _, r := range executor.Run(ctx, j.pool, tasks) {
		if r.Err != nil {
			failed++
			lastErr = r.Err
			w := windows[r.Index]
			j.logger.WithError(r.Err).WarnWithFields("Window fetch failed", map[string]interface{}{
				"handle": string(h),
				"since":  w.Since(),
				"until":  w.Until(),
			})
			continue
		}
		raws = append(raws, r.Value...)
	}

	if failed == len(windows) {
		return nil, fmt.Errorf("all %d windows failed: %w", failed, lastErr)
	}
	if raws == nil {
		raws = []ingest.RawRecord{}
	}
	return raws, nil
}
