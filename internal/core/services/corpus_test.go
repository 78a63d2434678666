package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/sercha-assist/internal/postprocessors"
)

func TestCorpusStore_Load(t *testing.T) {
	store, _ := newTestCorpus(
		doc("services.txt", "We build websites and mobile apps."),
		doc("courses.txt", coursesText),
		doc("empty.txt", "   \n\t "),
	)

	require.NoError(t, store.Load(context.Background(), testDataDir))

	stats := store.Stats()
	assert.True(t, stats.IsInitialized)
	assert.Equal(t, 2, stats.DocumentsLoaded, "empty document must be skipped")
	assert.Equal(t, 2, stats.ChunksCreated)
	assert.Equal(t, testDataDir, stats.DataPath)
	assert.NotNil(t, stats.LastUpdateTime)
	assert.Empty(t, stats.LastError)

	chunks, err := store.Chunks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "services.txt", chunks[0].Source)
	assert.Equal(t, "courses", chunks[1].Type)
	assert.Equal(t, domain.LanguageEnglish, chunks[1].Language)
}

func TestCorpusStore_Load_Errors(t *testing.T) {
	tests := []struct {
		name    string
		dir     string
		wantErr error
	}{
		{"missing directory", "/does/not/exist", domain.ErrDataDirectoryMissing},
		{"empty path", "  ", domain.ErrInvalidConfig},
		{"no documents", "/data/empty", domain.ErrNoDocumentsFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, source := newTestCorpus()
			source.SetDocuments("/data/empty")

			err := store.Load(context.Background(), tt.dir)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, store.Stats().IsInitialized)
		})
	}
}

func TestCorpusStore_Load_ReadErrorAbortsWholeLoad(t *testing.T) {
	store, source := newTestCorpus(doc("a.txt", "alpha"))
	source.SetError(fmt.Errorf("%w: read b.txt: permission denied", domain.ErrCorpusUnavailable))

	err := store.Load(context.Background(), testDataDir)

	assert.ErrorIs(t, err, domain.ErrCorpusUnavailable)
	stats := store.Stats()
	assert.False(t, stats.IsInitialized)
	assert.Contains(t, stats.LastError, "permission denied")
}

func TestCorpusStore_LazyInitialization(t *testing.T) {
	store, source := newTestCorpus(doc("courses.txt", coursesText))

	assert.False(t, store.Stats().IsInitialized)

	chunks, err := store.Chunks(context.Background())
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
	assert.Equal(t, 1, source.Calls())

	_, err = store.Chunks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, source.Calls(), "initialized store must not reload")
}

func TestCorpusStore_LazyInitialization_SurfacesError(t *testing.T) {
	store, _ := newTestCorpus()

	_, err := store.Chunks(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoDocumentsFound)
}

func TestCorpusStore_Refresh_ReplacesAllChunks(t *testing.T) {
	store, source := newTestCorpus(doc("courses.txt", coursesText))
	require.NoError(t, store.Load(context.Background(), testDataDir))
	first := store.Stats().LastUpdateTime

	source.SetDocuments(testDataDir, doc("pricing.txt", "Consulting costs $100 per hour."), doc("faq.txt", "Ask us anything."))
	require.NoError(t, store.Refresh(context.Background()))

	chunks, err := store.Chunks(context.Background())
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "pricing.txt", chunks[0].Source)
	assert.Equal(t, "faq.txt", chunks[1].Source)
	assert.Equal(t, 2, store.Stats().DocumentsLoaded)
	assert.False(t, store.Stats().LastUpdateTime.Before(*first))
}

func TestCorpusStore_Refresh_FailureKeepsPreviousCorpus(t *testing.T) {
	store, source := newTestCorpus(doc("courses.txt", coursesText))
	require.NoError(t, store.Load(context.Background(), testDataDir))

	source.SetDocuments(testDataDir)
	err := store.Refresh(context.Background())
	require.ErrorIs(t, err, domain.ErrNoDocumentsFound)

	stats := store.Stats()
	assert.True(t, stats.IsInitialized)
	assert.Equal(t, 1, stats.ChunksCreated)
	assert.Contains(t, stats.LastError, "no documents found")

	chunks, err := store.Chunks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, coursesText, chunks[0].Content)

	// A later successful refresh clears the recorded error
	source.SetDocuments(testDataDir, doc("courses.txt", coursesText))
	require.NoError(t, store.Refresh(context.Background()))
	assert.Empty(t, store.Stats().LastError)
}

func TestCorpusStore_RuntimeReadiness(t *testing.T) {
	source := mocks.NewMockDocumentSource()
	source.SetDocuments(testDataDir, doc("faq.txt", "Ask us anything."))
	rt := domain.NewRuntimeConfig("memory", "none")

	store := NewCorpusStore(CorpusStoreConfig{
		Source:   source,
		Pipeline: postprocessors.DefaultPipeline(postprocessors.DefaultChunkConfig()),
		DataPath: testDataDir,
		Runtime:  rt,
		Logger:   discardLogger(),
	})

	require.NoError(t, store.Load(context.Background(), testDataDir))
	assert.True(t, rt.CorpusReady())

	store.Reset()
	assert.False(t, rt.CorpusReady())
	assert.False(t, store.Stats().IsInitialized)
}

func TestCorpusStore_ConcurrentReadsDuringRefresh(t *testing.T) {
	small := []domain.SourceDocument{doc("a.txt", "alpha")}
	large := []domain.SourceDocument{doc("a.txt", "alpha"), doc("b.txt", "beta"), doc("c.txt", "gamma")}

	store, source := newTestCorpus(small...)
	require.NoError(t, store.Load(context.Background(), testDataDir))

	var wg sync.WaitGroup
	errCh := make(chan error, 400)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				source.SetDocuments(testDataDir, large...)
			} else {
				source.SetDocuments(testDataDir, small...)
			}
			if err := store.Refresh(context.Background()); err != nil {
				errCh <- err
			}
		}(i)
	}

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chunks, err := store.Chunks(context.Background())
			if err != nil {
				errCh <- err
				return
			}
			if n := len(chunks); n != 1 && n != 3 {
				errCh <- errors.New("observed partial corpus")
			}
			for _, c := range chunks {
				if strings.TrimSpace(c.Content) == "" {
					errCh <- errors.New("observed empty chunk")
				}
			}
		}()
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Error(err)
	}
}

func TestCorpusStore_Load_UsesPipelineOutput(t *testing.T) {
	source := mocks.NewMockDocumentSource()
	source.SetDocuments(testDataDir, doc("faq.txt", "Opening hours are 9 to 5."), doc("blank.txt", ""))

	var processed []string
	pipeline := mocks.NewMockPostProcessorPipeline()
	pipeline.ProcessFn = func(d domain.SourceDocument) []domain.DocumentChunk {
		processed = append(processed, d.Name)
		return []domain.DocumentChunk{
			{Content: "part one", Source: d.Name},
			{Content: "part two", Source: d.Name},
		}
	}

	store := NewCorpusStore(CorpusStoreConfig{
		Source:   source,
		Pipeline: pipeline,
		DataPath: testDataDir,
		Logger:   discardLogger(),
	})
	require.NoError(t, store.Load(context.Background(), testDataDir))

	assert.Equal(t, []string{"faq.txt"}, processed, "blank documents never reach the pipeline")
	stats := store.Stats()
	assert.Equal(t, 1, stats.DocumentsLoaded)
	assert.Equal(t, 2, stats.ChunksCreated)
}

func TestCorpusStore_LazyLoad_CallerCancellationIsIsolated(t *testing.T) {
	store, source := newTestCorpus(doc("courses.txt", coursesText))

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	source.BeforeLoad = func(ctx context.Context) error {
		once.Do(func() { close(started) })
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ctx1, cancel1 := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := store.Chunks(ctx1)
		firstErr <- err
	}()
	<-started

	type result struct {
		chunks []domain.DocumentChunk
		err    error
	}
	second := make(chan result, 1)
	go func() {
		chunks, err := store.Chunks(context.Background())
		second <- result{chunks, err}
	}()

	// Let the second caller join the in-flight load before the first leaves.
	time.Sleep(50 * time.Millisecond)
	cancel1()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	res := <-second
	require.NoError(t, res.err, "a live caller must not inherit another caller's cancellation")
	assert.Len(t, res.chunks, 1)
	assert.True(t, store.Stats().IsInitialized)
	assert.Empty(t, store.Stats().LastError)
}

func TestCorpusStore_Load_LoadTimeoutBoundsSharedBuild(t *testing.T) {
	source := mocks.NewMockDocumentSource()
	source.SetDocuments(testDataDir, doc("a.txt", "alpha"))
	source.BeforeLoad = func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	store := NewCorpusStore(CorpusStoreConfig{
		Source:      source,
		Pipeline:    postprocessors.DefaultPipeline(postprocessors.DefaultChunkConfig()),
		DataPath:    testDataDir,
		LoadTimeout: 20 * time.Millisecond,
		Logger:      discardLogger(),
	})

	err := store.Load(context.Background(), testDataDir)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, store.Stats().IsInitialized)
}

func TestCorpusStore_Load_AllDocumentsBlank(t *testing.T) {
	store, _ := newTestCorpus(doc("a.txt", "   "), doc("b.md", "\n\t"))

	require.NoError(t, store.Load(context.Background(), testDataDir))

	stats := store.Stats()
	assert.True(t, stats.IsInitialized, "eligible files exist, so the corpus is loaded")
	assert.Equal(t, 0, stats.DocumentsLoaded)
	assert.Equal(t, 0, stats.ChunksCreated)

	chunks, err := store.Chunks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
