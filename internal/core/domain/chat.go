package domain

import "time"

// GenerationOptions are the sampling parameters sent to the inference service
type GenerationOptions struct {
	Temperature   float64 `json:"temperature" yaml:"temperature"`
	TopP          float64 `json:"top_p" yaml:"top_p"`
	TopK          int     `json:"top_k" yaml:"top_k"`
	RepeatPenalty float64 `json:"repeat_penalty" yaml:"repeat_penalty"`
	MaxTokens     int     `json:"max_tokens" yaml:"max_tokens"`         // Maximum output length
	ContextWindow int     `json:"context_window" yaml:"context_window"` // Model context size
}

// DefaultGenerationOptions returns the built-in generation defaults
func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{
		Temperature:   0.7,
		TopP:          0.9,
		TopK:          40,
		RepeatPenalty: 1.1,
		MaxTokens:     1024,
		ContextWindow: 4096,
	}
}

// GenerationOverrides are per-request overrides. Nil fields keep the default.
type GenerationOverrides struct {
	Temperature   *float64 `json:"temperature,omitempty"`
	TopP          *float64 `json:"top_p,omitempty"`
	TopK          *int     `json:"top_k,omitempty"`
	RepeatPenalty *float64 `json:"repeat_penalty,omitempty"`
	MaxTokens     *int     `json:"max_tokens,omitempty"`
	ContextWindow *int     `json:"context_window,omitempty"`
}

// Merge applies call-site overrides on top of o and returns the result.
// Precedence: overrides > o (configured defaults) > built-in defaults.
func (o GenerationOptions) Merge(overrides *GenerationOverrides) GenerationOptions {
	out := o.withDefaults()
	if overrides == nil {
		return out
	}
	if overrides.Temperature != nil {
		out.Temperature = *overrides.Temperature
	}
	if overrides.TopP != nil {
		out.TopP = *overrides.TopP
	}
	if overrides.TopK != nil {
		out.TopK = *overrides.TopK
	}
	if overrides.RepeatPenalty != nil {
		out.RepeatPenalty = *overrides.RepeatPenalty
	}
	if overrides.MaxTokens != nil {
		out.MaxTokens = *overrides.MaxTokens
	}
	if overrides.ContextWindow != nil {
		out.ContextWindow = *overrides.ContextWindow
	}
	return out
}

// withDefaults fills zero-valued fields from the built-in defaults.
// Temperature 0 is a legitimate setting and is kept.
func (o GenerationOptions) withDefaults() GenerationOptions {
	def := DefaultGenerationOptions()
	if o.TopP == 0 {
		o.TopP = def.TopP
	}
	if o.TopK == 0 {
		o.TopK = def.TopK
	}
	if o.RepeatPenalty == 0 {
		o.RepeatPenalty = def.RepeatPenalty
	}
	if o.MaxTokens == 0 {
		o.MaxTokens = def.MaxTokens
	}
	if o.ContextWindow == 0 {
		o.ContextWindow = def.ContextWindow
	}
	return o
}

// GenerationRequest is one call to the inference service
type GenerationRequest struct {
	SystemPrompt string
	UserPrompt   string
	Options      GenerationOptions
}

// GenerationResult is the inference service reply
type GenerationResult struct {
	Text       string `json:"text"`
	TokenCount int    `json:"token_count"`
	Model      string `json:"model"`
}

// MaxMessageLength bounds the accepted chat message, in runes
const MaxMessageLength = 2000

// ChatRequest is a single stateless chat turn
type ChatRequest struct {
	Message string               `json:"message"`
	TopK    *int                 `json:"top_k,omitempty"`
	Options *GenerationOverrides `json:"options,omitempty"`
}

// ChatResponse is the generated answer plus provenance metadata
type ChatResponse struct {
	Answer     string        `json:"answer"`
	Sources    []string      `json:"sources"`
	HasContext bool          `json:"has_context"`
	Language   Language      `json:"language"`
	ChunkCount int           `json:"chunk_count"`
	Model      string        `json:"model"`
	TokenCount int           `json:"token_count"`
	Took       time.Duration `json:"took"`
}

// ChatLog is an audit record of one answered chat turn
type ChatLog struct {
	ID         string    `json:"id"`
	Message    string    `json:"message"`
	Answer     string    `json:"answer"`
	Language   Language  `json:"language"`
	Sources    []string  `json:"sources"`
	HasContext bool      `json:"has_context"`
	Model      string    `json:"model"`
	TokenCount int       `json:"token_count"`
	LatencyMs  int64     `json:"latency_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
