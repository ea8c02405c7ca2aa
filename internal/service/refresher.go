package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/verdeando/internal/metrics"
)

// Job is a named background refresh, e.g. reloading the green point registry.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Refresher periodically runs its jobs on a small worker pool so the station's cached
// state (registry, exchanges, point balance) does not go stale between user actions.
type Refresher struct {
	log          *slog.Logger     // Logger for logging service activities
	metrics      *metrics.Metrics // Metrics for tracking job outcomes
	jobs         []Job            // Jobs run on every tick
	numWorkers   int              // Number of concurrent workers
	pollInterval time.Duration    // Interval between refresh rounds
}

// NewRefresher creates a refresher running jobs every pollInterval.
func NewRefresher(
	log *slog.Logger,
	metrics *metrics.Metrics,
	numWorkers int,
	pollInterval time.Duration,
	jobs ...Job,
) *Refresher {
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &Refresher{
		log:          log,
		metrics:      metrics,
		jobs:         jobs,
		numWorkers:   numWorkers,
		pollInterval: pollInterval,
	}
}

// Run refreshes on every tick until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	r.log.InfoContext(ctx, "Refresher started", "interval", r.pollInterval, "jobs", len(r.jobs))

	for {
		select {
		case <-ctx.Done():
			r.log.InfoContext(ctx, "Refresher stopped.")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// refresh runs one round of every job and waits for all of them.
func (r *Refresher) refresh(ctx context.Context) {
	if len(r.jobs) == 0 {
		return
	}

	r.log.DebugContext(ctx, "Running refresh round", "jobs", len(r.jobs), "num_workers", r.numWorkers)

	jobs := make(chan Job, len(r.jobs))
	var wgr sync.WaitGroup

	for i := 1; i <= min(r.numWorkers, len(r.jobs)); i++ {
		wgr.Add(1)
		go r.worker(ctx, i, &wgr, jobs)
	}

	for _, job := range r.jobs {
		jobs <- job
	}
	close(jobs)

	wgr.Wait()
}

func (r *Refresher) worker(ctx context.Context, idx int, wg *sync.WaitGroup, jobs <-chan Job) {
	defer wg.Done()
	for job := range jobs {
		if ctx.Err() != nil {
			return
		}

		r.metrics.ActiveWorkers.Inc()
		r.log.DebugContext(ctx, "Running refresh job", "worker", idx, "job", job.Name)

		if err := job.Run(ctx); err != nil {
			r.log.WarnContext(ctx, "Refresh job failed", "worker", idx, "job", job.Name, "error", err)
			r.metrics.RefreshJobs.WithLabelValues(job.Name, "failure").Inc()
		} else {
			r.metrics.RefreshJobs.WithLabelValues(job.Name, "success").Inc()
		}

		r.metrics.ActiveWorkers.Dec()
	}
}
