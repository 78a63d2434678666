package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driving"
)

// Ensure CorpusStore implements CorpusService
var _ driving.CorpusService = (*CorpusStore)(nil)

// corpusSnapshot is one fully built corpus. It is immutable once published.
type corpusSnapshot struct {
	chunks    []domain.DocumentChunk
	documents int
	dataPath  string
	loadedAt  time.Time
}

// CorpusStore owns the in-memory chunk corpus.
//
// Readers load the current snapshot through an atomic pointer; a load builds
// a complete new snapshot before swapping it in, so readers never observe a
// partial corpus and a failed refresh leaves the previous one serving.
// Concurrent loads of the same directory are coalesced.
type CorpusStore struct {
	source   driven.DocumentSource
	pipeline driven.PostProcessorPipeline
	runtime  *domain.RuntimeConfig
	logger   *slog.Logger

	snapshot    atomic.Pointer[corpusSnapshot]
	group       singleflight.Group
	loadTimeout time.Duration

	mu        sync.RWMutex
	dataPath  string
	lastError string
}

// CorpusStoreConfig holds configuration for the corpus store.
type CorpusStoreConfig struct {
	Source   driven.DocumentSource
	Pipeline driven.PostProcessorPipeline
	DataPath    string                // Directory used for lazy loads and refreshes
	Runtime     *domain.RuntimeConfig // Optional: readiness flag is kept in sync
	LoadTimeout time.Duration         // Bound on one shared build (default: 5m)
	Logger      *slog.Logger
}

// NewCorpusStore creates a new, uninitialized corpus store.
func NewCorpusStore(cfg CorpusStoreConfig) *CorpusStore {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	loadTimeout := cfg.LoadTimeout
	if loadTimeout <= 0 {
		loadTimeout = 5 * time.Minute
	}

	return &CorpusStore{
		source:      cfg.Source,
		pipeline:    cfg.Pipeline,
		runtime:     cfg.Runtime,
		logger:      logger.With("component", "corpus"),
		dataPath:    cfg.DataPath,
		loadTimeout: loadTimeout,
	}
}

// Load reads and chunks every eligible document in dir.
//
// Concurrent callers share one build. The build runs detached from any
// caller's cancellation, bounded by the store's load timeout; each caller
// stops waiting when its own ctx is done and the build carries on for the rest.
func (s *CorpusStore) Load(ctx context.Context, dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("%w: corpus data path is empty", domain.ErrInvalidConfig)
	}

	ch := s.group.DoChan(dir, func() (interface{}, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		return nil, s.build(buildCtx, dir)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Refresh fully re-derives the corpus from the last loaded directory.
func (s *CorpusStore) Refresh(ctx context.Context) error {
	s.mu.RLock()
	dir := s.dataPath
	s.mu.RUnlock()

	s.logger.Info("refreshing corpus", "data_path", dir)
	return s.Load(ctx, dir)
}

// Chunks returns the current corpus, loading the configured directory first
// if nothing has been loaded yet.
func (s *CorpusStore) Chunks(ctx context.Context) ([]domain.DocumentChunk, error) {
	if snap := s.snapshot.Load(); snap != nil {
		return snap.chunks, nil
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}

	snap := s.snapshot.Load()
	if snap == nil {
		return nil, domain.ErrCorpusUnavailable
	}
	return snap.chunks, nil
}

// Stats returns a read-only snapshot of corpus state.
func (s *CorpusStore) Stats() domain.CorpusStats {
	s.mu.RLock()
	stats := domain.CorpusStats{
		DataPath:  s.dataPath,
		LastError: s.lastError,
	}
	s.mu.RUnlock()

	if snap := s.snapshot.Load(); snap != nil {
		loadedAt := snap.loadedAt
		stats.DocumentsLoaded = snap.documents
		stats.ChunksCreated = len(snap.chunks)
		stats.IsInitialized = true
		stats.LastUpdateTime = &loadedAt
	}
	return stats
}

// Reset drops the corpus; the next read triggers a fresh load.
func (s *CorpusStore) Reset() {
	s.snapshot.Store(nil)
	if s.runtime != nil {
		s.runtime.SetCorpusReady(false)
	}
}

// build loads dir into a new snapshot and publishes it on success.
func (s *CorpusStore) build(ctx context.Context, dir string) error {
	start := time.Now()

	docs, err := s.source.Load(ctx, dir)
	if err != nil {
		return s.fail(dir, err)
	}
	if len(docs) == 0 {
		return s.fail(dir, fmt.Errorf("%w: %s", domain.ErrNoDocumentsFound, dir))
	}

	snap := &corpusSnapshot{dataPath: dir}
	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) == "" {
			s.logger.Warn("skipping empty document", "source", doc.Name)
			continue
		}
		snap.chunks = append(snap.chunks, s.pipeline.Process(doc)...)
		snap.documents++
	}
	snap.loadedAt = time.Now()

	s.snapshot.Store(snap)

	s.mu.Lock()
	s.dataPath = dir
	s.lastError = ""
	s.mu.Unlock()

	if s.runtime != nil {
		s.runtime.SetCorpusReady(true)
	}

	s.logger.Info("corpus loaded",
		"data_path", dir,
		"documents", snap.documents,
		"chunks", len(snap.chunks),
		"duration", time.Since(start),
	)
	return nil
}

// fail records a load failure without touching the published snapshot.
func (s *CorpusStore) fail(dir string, err error) error {
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()

	s.logger.Error("corpus load failed",
		"data_path", dir,
		"error", err,
		"serving_previous", s.snapshot.Load() != nil,
	)
	return err
}
