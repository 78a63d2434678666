package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
)

// mockCorpus implements driving.CorpusService for testing
type mockCorpus struct {
	mu        sync.Mutex
	refreshes int
	err       error
	stats     domain.CorpusStats
}

func (m *mockCorpus) Load(ctx context.Context, dir string) error { return nil }

func (m *mockCorpus) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes++
	return m.err
}

func (m *mockCorpus) Stats() domain.CorpusStats { return m.stats }

func (m *mockCorpus) Chunks(ctx context.Context) ([]domain.DocumentChunk, error) {
	return nil, nil
}

func (m *mockCorpus) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshes
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRefresher_InvalidSchedule(t *testing.T) {
	for _, schedule := range []string{"", "not a schedule", "* * *"} {
		_, err := NewRefresher(RefresherConfig{Corpus: &mockCorpus{}, Schedule: schedule, Logger: testLogger()})
		assert.Error(t, err, "schedule %q", schedule)
	}
}

func TestNewRefresher_Defaults(t *testing.T) {
	r, err := NewRefresher(RefresherConfig{Corpus: &mockCorpus{}, Schedule: "@every 30m"})
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, r.timeout)
	assert.NotNil(t, r.logger)
	assert.False(t, r.Health().Running)
}

func TestRefresher_RunNow_Success(t *testing.T) {
	corpus := &mockCorpus{stats: domain.CorpusStats{DocumentsLoaded: 2, ChunksCreated: 7}}
	r, err := NewRefresher(RefresherConfig{Corpus: corpus, Schedule: "*/30 * * * *", Logger: testLogger()})
	require.NoError(t, err)

	require.NoError(t, r.RunNow(context.Background()))

	h := r.Health()
	assert.Equal(t, 1, corpus.count())
	assert.Equal(t, 1, h.Runs)
	require.NotNil(t, h.LastRun)
	assert.Empty(t, h.LastError)
}

func TestRefresher_RunNow_FailureRecorded(t *testing.T) {
	corpus := &mockCorpus{err: domain.ErrNoDocumentsFound}
	r, err := NewRefresher(RefresherConfig{Corpus: corpus, Schedule: "@hourly", Logger: testLogger()})
	require.NoError(t, err)

	err = r.RunNow(context.Background())
	assert.True(t, errors.Is(err, domain.ErrNoDocumentsFound))
	assert.Equal(t, "no documents found", r.Health().LastError)

	corpus.mu.Lock()
	corpus.err = nil
	corpus.mu.Unlock()

	require.NoError(t, r.RunNow(context.Background()))
	assert.Empty(t, r.Health().LastError)
	assert.Equal(t, 2, r.Health().Runs)
}

func TestRefresher_StartStop(t *testing.T) {
	corpus := &mockCorpus{}
	r, err := NewRefresher(RefresherConfig{Corpus: corpus, Schedule: "@every 1s", Logger: testLogger()})
	require.NoError(t, err)

	require.NoError(t, r.Start(context.Background()))
	require.NoError(t, r.Start(context.Background()), "second start is a no-op")

	h := r.Health()
	assert.True(t, h.Running)
	assert.NotNil(t, h.NextRun)

	assert.Eventually(t, func() bool { return corpus.count() >= 1 }, 5*time.Second, 50*time.Millisecond)

	r.Stop()
	r.Stop()
	assert.False(t, r.Health().Running)

	stopped := corpus.count()
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, stopped, corpus.count(), "no refresh after stop")
}

func TestRefresher_StopsOnContextCancel(t *testing.T) {
	r, err := NewRefresher(RefresherConfig{Corpus: &mockCorpus{}, Schedule: "@every 1h", Logger: testLogger()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !r.Health().Running }, time.Second, 10*time.Millisecond)
}

func TestRefresher_Start_CancelledContext(t *testing.T) {
	r, err := NewRefresher(RefresherConfig{Corpus: &mockCorpus{}, Schedule: "@every 1h", Logger: testLogger()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = r.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, r.Health().Running)
}
