package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
	"github.com/custodia-labs/sercha-assist/internal/language"
)

// defaultSearchTopK applies when neither the request nor the config sets top_k
const defaultSearchTopK = 4

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 64 << 10

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"` // Only in development
}

// ReadyResponse reports whether chat requests can be answered
type ReadyResponse struct {
	Status       string `json:"status"`
	CorpusReady  bool   `json:"corpus_ready"`
	LLMAvailable bool   `json:"llm_available"`
}

// SearchRequest is the body of POST /api/v1/search
type SearchRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k,omitempty"`
}

// apology is the user-facing message when the inference service fails
var apology = map[domain.Language]string{
	domain.LanguageEnglish: "Sorry, the assistant is temporarily unavailable. Please try again in a moment.",
	domain.LanguageArabic:  "معلش، المساعد مش متاح دلوقتي. ممكن حضرتك تحاول تاني بعد شوية؟",
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{
		Status:       "ready",
		CorpusReady:  s.runtime.CorpusReady(),
		LLMAvailable: s.runtime.LLMAvailable(),
	}
	if !s.runtime.CanAnswer() {
		resp.Status = "not_ready"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Chat endpoints

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.chat.Chat(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err, language.Detect(req.Message))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !s.decode(w, r, &req) {
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	topK := s.searchTopK
	if req.TopK != nil {
		if *req.TopK < 0 {
			writeError(w, http.StatusBadRequest, "top_k must not be negative")
			return
		}
		topK = *req.TopK
	}

	start := time.Now()
	results, err := s.retriever.Search(r.Context(), query, topK)
	if err != nil {
		s.writeServiceError(w, r, err, language.Detect(query))
		return
	}

	writeJSON(w, http.StatusOK, domain.SearchResult{
		Query:    query,
		Language: language.Detect(query),
		Results:  results,
		Took:     time.Since(start),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.corpus.Stats())
}

// Admin endpoints

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.admin.Login(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err, domain.LanguageEnglish)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefreshCorpus(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())

	if err := s.corpus.Refresh(r.Context()); err != nil {
		s.logger.Error("corpus refresh failed", "admin", authCtx.Username, "error", err)
		s.writeServiceError(w, r, err, domain.LanguageEnglish)
		return
	}

	s.logger.Info("corpus refreshed", "admin", authCtx.Username)
	writeJSON(w, http.StatusOK, s.corpus.Stats())
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	logs, err := s.chat.RecentLogs(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, r, err, domain.LanguageEnglish)
		return
	}

	writeJSON(w, http.StatusOK, logs)
}

// Helper functions

// decode reads a bounded JSON body into dst, writing 400 on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeServiceError maps a domain error to its status code. Internal
// failures get a generic message unless running in development.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, lang domain.Language) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many requests")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, "token expired")
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case domain.IsInferenceError(err):
		s.logger.Error("inference failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
		s.writeInternal(w, http.StatusServiceUnavailable, apology[lang], err)
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
		s.writeInternal(w, http.StatusInternalServerError, "internal server error", err)
	}
}

func (s *Server) writeInternal(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if s.environment == "development" {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
