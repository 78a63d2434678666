package domain

import "sync"

// RuntimeConfig tracks which services are available at runtime.
// Static fields are set at startup; flags are updated as services come and go.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	RateLimitBackend string // "redis" or "memory"
	ChatLogBackend   string // "postgres" or "none"

	llmAvailable bool
	corpusReady  bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(rateLimitBackend, chatLogBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		RateLimitBackend: rateLimitBackend,
		ChatLogBackend:   chatLogBackend,
	}
}

// LLMAvailable returns whether the inference service is configured
func (c *RuntimeConfig) LLMAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable
}

// SetLLMAvailable updates the inference availability flag
func (c *RuntimeConfig) SetLLMAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llmAvailable = available
}

// CorpusReady returns whether the chunk store holds a loaded corpus
func (c *RuntimeConfig) CorpusReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.corpusReady
}

// SetCorpusReady updates the corpus readiness flag
func (c *RuntimeConfig) SetCorpusReady(ready bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.corpusReady = ready
}

// CanAnswer returns true if chat requests can be served end to end
func (c *RuntimeConfig) CanAnswer() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable && c.corpusReady
}
