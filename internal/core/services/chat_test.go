package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/sercha-assist/internal/runtime"
)

type chatFixture struct {
	svc   *chatService
	llm   *mocks.MockLLMService
	logs  *mocks.MockChatLogStore
	store *CorpusStore
}

func newChatFixture(t *testing.T, docs ...domain.SourceDocument) *chatFixture {
	t.Helper()

	store, _ := newTestCorpus(docs...)
	llm := mocks.NewMockLLMService()
	services := runtime.NewServices(domain.NewRuntimeConfig("memory", "none"))
	services.SetLLMService(llm)
	logs := mocks.NewMockChatLogStore()

	svc := NewChatService(ChatServiceConfig{
		Retriever:  newTestRetriever(store, DefaultMinScore),
		Composer:   NewPromptComposer(""),
		Services:   services,
		ChatLogs:   logs,
		Generation: domain.GenerationOptions{Temperature: 0.2, MaxTokens: 256},
		Logger:     discardLogger(),
	}).(*chatService)

	return &chatFixture{svc: svc, llm: llm, logs: logs, store: store}
}

func TestChatService_Chat(t *testing.T) {
	f := newChatFixture(t, doc("courses.txt", coursesText))

	resp, err := f.svc.Chat(context.Background(), domain.ChatRequest{
		Message: "  What courses do you offer and their prices?  ",
	})

	require.NoError(t, err)
	assert.Equal(t, "echo: What courses do you offer and their prices?", resp.Answer)
	assert.True(t, resp.HasContext)
	assert.Equal(t, []string{"courses.txt"}, resp.Sources)
	assert.Equal(t, 1, resp.ChunkCount)
	assert.Equal(t, domain.LanguageEnglish, resp.Language)
	assert.Equal(t, "mock-llm", resp.Model)
	assert.Equal(t, 3, resp.TokenCount)

	reqs := f.llm.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].SystemPrompt, "[Document 1 - courses.txt]")
	assert.Equal(t, 0.2, reqs[0].Options.Temperature)
	assert.Equal(t, 256, reqs[0].Options.MaxTokens)
	assert.Equal(t, 0.9, reqs[0].Options.TopP)

	assert.Equal(t, 1, f.logs.Count())
}

func TestChatService_Chat_Overrides(t *testing.T) {
	f := newChatFixture(t, doc("courses.txt", coursesText))
	temp := 0.0
	topK := 0

	resp, err := f.svc.Chat(context.Background(), domain.ChatRequest{
		Message: "What courses do you offer?",
		TopK:    &topK,
		Options: &domain.GenerationOverrides{Temperature: &temp},
	})

	require.NoError(t, err)
	assert.False(t, resp.HasContext, "top_k 0 retrieves nothing")
	assert.Empty(t, resp.Sources)

	reqs := f.llm.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, 0.0, reqs[0].Options.Temperature)
	assert.Equal(t, 256, reqs[0].Options.MaxTokens)
}

func TestChatService_Chat_Validation(t *testing.T) {
	negative := -1

	tests := []struct {
		name string
		req  domain.ChatRequest
	}{
		{"empty message", domain.ChatRequest{Message: ""}},
		{"whitespace message", domain.ChatRequest{Message: " \n\t "}},
		{"too long", domain.ChatRequest{Message: strings.Repeat("س", domain.MaxMessageLength+1)}},
		{"negative top_k", domain.ChatRequest{Message: "hello", TopK: &negative}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChatFixture(t, doc("courses.txt", coursesText))

			_, err := f.svc.Chat(context.Background(), tt.req)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, f.llm.Requests())
		})
	}
}

func TestChatService_Chat_MaxLengthAccepted(t *testing.T) {
	f := newChatFixture(t, doc("courses.txt", coursesText))

	_, err := f.svc.Chat(context.Background(), domain.ChatRequest{
		Message: strings.Repeat("س", domain.MaxMessageLength),
	})

	assert.NoError(t, err)
}

func TestChatService_Chat_NoLLM(t *testing.T) {
	f := newChatFixture(t, doc("courses.txt", coursesText))
	f.svc.services.SetLLMService(nil)

	_, err := f.svc.Chat(context.Background(), domain.ChatRequest{Message: "hello"})

	assert.ErrorIs(t, err, domain.ErrInferenceUnavailable)
}

func TestChatService_Chat_RetrievalErrorPropagates(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.svc.Chat(context.Background(), domain.ChatRequest{Message: "hello"})

	assert.ErrorIs(t, err, domain.ErrNoDocumentsFound)
	assert.Empty(t, f.llm.Requests(), "no default prompt may be sent after a retrieval failure")
}

func TestChatService_Chat_GenerationErrors(t *testing.T) {
	tests := []struct {
		name    string
		genErr  error
		wantErr error
	}{
		{"unclassified error", errors.New("boom"), domain.ErrInferenceUnavailable},
		{"connection refused", fmt.Errorf("%w: dial tcp: connection refused", domain.ErrInferenceUnavailable), domain.ErrInferenceUnavailable},
		{"model not found", fmt.Errorf("%w: llama3", domain.ErrModelNotFound), domain.ErrModelNotFound},
		{"deadline", context.DeadlineExceeded, domain.ErrInferenceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChatFixture(t, doc("courses.txt", coursesText))
			f.llm.GenerateFn = func(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
				return nil, tt.genErr
			}

			_, err := f.svc.Chat(context.Background(), domain.ChatRequest{Message: "hello"})

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, f.logs.Count())
		})
	}
}

func TestChatService_Chat_TracksInferenceAvailability(t *testing.T) {
	f := newChatFixture(t, doc("courses.txt", coursesText))
	runtimeConfig := f.svc.services.Config()

	f.llm.GenerateFn = func(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
		return nil, fmt.Errorf("%w: connection refused", domain.ErrInferenceUnavailable)
	}
	_, err := f.svc.Chat(context.Background(), domain.ChatRequest{Message: "hello"})
	require.Error(t, err)
	assert.False(t, runtimeConfig.LLMAvailable())

	f.llm.GenerateFn = nil
	_, err = f.svc.Chat(context.Background(), domain.ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.True(t, runtimeConfig.LLMAvailable())
}

func TestChatService_Chat_LogFailureIsNotFatal(t *testing.T) {
	f := newChatFixture(t, doc("courses.txt", coursesText))
	f.logs.FailAll = true

	resp, err := f.svc.Chat(context.Background(), domain.ChatRequest{Message: "hello"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Answer)
}

func TestChatService_RecentLogs(t *testing.T) {
	f := newChatFixture(t, doc("courses.txt", coursesText))
	for _, msg := range []string{"first", "second", "third"} {
		_, err := f.svc.Chat(context.Background(), domain.ChatRequest{Message: msg})
		require.NoError(t, err)
	}

	logs, err := f.svc.RecentLogs(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "third", logs[0].Message)
	assert.Equal(t, "second", logs[1].Message)
	assert.NotEmpty(t, logs[0].ID)
}

func TestChatService_RecentLogs_NoStore(t *testing.T) {
	f := newChatFixture(t, doc("courses.txt", coursesText))
	f.svc.chatLogs = nil

	logs, err := f.svc.RecentLogs(context.Background(), 10)

	require.NoError(t, err)
	assert.Empty(t, logs)
}
