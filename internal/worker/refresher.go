// Package worker runs background jobs alongside the API: currently the
// scheduled corpus refresh.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/custodia-labs/sercha-assist/internal/core/ports/driving"
)

// Refresher reloads the corpus on a cron schedule.
// Runs never overlap; a run that fires while another is active is skipped.
type Refresher struct {
	corpus   driving.CorpusService
	schedule string
	timeout  time.Duration
	logger   *slog.Logger

	cron    *cron.Cron
	entryID cron.EntryID

	// Internal state
	mu        sync.RWMutex
	running   bool
	lastRun   time.Time
	lastError string
	runs      int
	runMu     sync.Mutex
}

// RefresherConfig holds configuration for the refresher.
type RefresherConfig struct {
	Corpus   driving.CorpusService
	Schedule string        // Standard 5-field cron spec or descriptor ("@every 30m")
	Timeout  time.Duration // Bound on one refresh (default: 5m)
	Logger   *slog.Logger
}

// NewRefresher validates the schedule and creates a refresher.
func NewRefresher(cfg RefresherConfig) (*Refresher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", cfg.Schedule, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &Refresher{
		corpus:   cfg.Corpus,
		schedule: cfg.Schedule,
		timeout:  timeout,
		logger:   logger.With("component", "refresher"),
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}, nil
}

// Start schedules the refresh job. It returns immediately; the job runs
// until Stop is called or ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("start refresher: %w", err)
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}

	id, err := r.cron.AddFunc(r.schedule, func() { _ = r.RunNow(ctx) })
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("schedule refresh: %w", err)
	}
	r.entryID = id
	r.running = true
	r.mu.Unlock()

	r.cron.Start()
	r.logger.Info("refresher started", "schedule", r.schedule)

	go func() {
		<-ctx.Done()
		r.Stop()
	}()
	return nil
}

// Stop stops scheduling and waits for an in-flight refresh to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.cron.Remove(r.entryID)
	r.mu.Unlock()

	<-r.cron.Stop().Done()
	r.logger.Info("refresher stopped")
}

// RunNow performs one refresh synchronously and records the outcome.
func (r *Refresher) RunNow(ctx context.Context) error {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	err := r.corpus.Refresh(ctx)
	duration := time.Since(start)

	r.mu.Lock()
	r.lastRun = start
	r.runs++
	if err != nil {
		r.lastError = err.Error()
	} else {
		r.lastError = ""
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("scheduled refresh failed, previous corpus kept",
			"duration", duration,
			"error", err,
		)
		return err
	}

	stats := r.corpus.Stats()
	r.logger.Info("scheduled refresh completed",
		"documents", stats.DocumentsLoaded,
		"chunks", stats.ChunksCreated,
		"duration", duration,
	)
	return nil
}

// Health reports the refresher state.
type Health struct {
	Running   bool       `json:"running"`
	Schedule  string     `json:"schedule"`
	Runs      int        `json:"runs"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// Health returns the health status of the refresher.
func (r *Refresher) Health() Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h := Health{
		Running:   r.running,
		Schedule:  r.schedule,
		Runs:      r.runs,
		LastError: r.lastError,
	}
	if !r.lastRun.IsZero() {
		last := r.lastRun
		h.LastRun = &last
	}
	if r.running {
		if next := r.cron.Entry(r.entryID).Next; !next.IsZero() {
			h.NextRun = &next
		}
	}
	return h
}
