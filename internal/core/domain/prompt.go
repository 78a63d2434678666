package domain

// PromptBundle is the composed system/user prompt pair for one query
type PromptBundle struct {
	SystemPrompt string   `json:"system_prompt"`
	UserPrompt   string   `json:"user_prompt"`
	HasContext   bool     `json:"has_context"`
	Sources      []string `json:"sources"` // Distinct chunk sources, first-seen order
	Language     Language `json:"language"`
	ChunkCount   int      `json:"chunk_count"`
}
