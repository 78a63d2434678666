package domain

// AIProvider identifies the inference provider
type AIProvider string

const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderAnthropic AIProvider = "anthropic"
	AIProviderGemini    AIProvider = "gemini"
)

// RequiresAPIKey returns true if the provider requires an API key
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderOllama:
		return false // Self-hosted, no API key needed
	default:
		return true
	}
}

// IsValid returns true if the provider is known
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// LLMSettings configures the inference service
type LLMSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"` // Never serialize to JSON
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if enough settings are present to build a client
func (s *LLMSettings) IsConfigured() bool {
	if s.Provider == "" || s.Model == "" {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}
