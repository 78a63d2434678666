// Package config loads process configuration from built-in defaults, an
// optional YAML file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/sercha-assist/internal/core/domain"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	Environment string   `yaml:"environment"`
	CORSOrigins []string `yaml:"cors_origins"`
	TrustProxy  bool     `yaml:"trust_proxy"`
}

// CorpusConfig configures the knowledge corpus and retrieval.
type CorpusConfig struct {
	DataPath        string  `yaml:"data_path"`
	ChunkSize       int     `yaml:"chunk_size"`
	ChunkOverlap    int     `yaml:"chunk_overlap"`
	TopK            int     `yaml:"top_k"`
	MinScore        float64 `yaml:"min_score"`
	RefreshSchedule string  `yaml:"refresh_schedule"` // Empty disables scheduled refresh
	CompanyName     string  `yaml:"company_name"`
}

// LLMConfig configures the inference service.
type LLMConfig struct {
	Provider   domain.AIProvider        `yaml:"provider"`
	BaseURL    string                   `yaml:"base_url"`
	Model      string                   `yaml:"model"`
	APIKey     string                   `yaml:"api_key"`
	Timeout    time.Duration            `yaml:"timeout"`
	Generation domain.GenerationOptions `yaml:"generation"`
}

// RateLimitConfig configures the chat rate limit.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"` // Per window per client
	Window   time.Duration `yaml:"window"`
	Burst    int           `yaml:"burst"` // In-memory limiter only
}

// AuthConfig configures admin authentication.
type AuthConfig struct {
	JWTSecret         string        `yaml:"jwt_secret"`
	AdminUsername     string        `yaml:"admin_username"`
	AdminPasswordHash string        `yaml:"admin_password_hash"` // bcrypt; empty disables login
	TokenTTL          time.Duration `yaml:"token_ttl"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Config is the root configuration.
type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Corpus      CorpusConfig    `yaml:"corpus"`
	LLM         LLMConfig       `yaml:"llm"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	RedisURL    string          `yaml:"redis_url"`    // Empty selects the in-memory limiter
	DatabaseURL string          `yaml:"database_url"` // Empty disables the chat log
	Auth        AuthConfig      `yaml:"auth"`
	Logging     LoggingConfig   `yaml:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			Environment: "production",
			CORSOrigins: []string{"*"},
		},
		Corpus: CorpusConfig{
			DataPath:     "./data",
			ChunkSize:    1000,
			ChunkOverlap: 200,
			TopK:         4,
			MinScore:     0.5,
		},
		LLM: LLMConfig{
			Provider:   domain.AIProviderOllama,
			BaseURL:    "http://localhost:11434",
			Model:      "llama3.1:8b",
			Timeout:    60 * time.Second,
			Generation: domain.DefaultGenerationOptions(),
		},
		RateLimit: RateLimitConfig{
			Requests: 20,
			Window:   time.Minute,
		},
		Auth: AuthConfig{
			AdminUsername: "admin",
			TokenTTL:      24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from the process environment. CONFIG_FILE,
// when set, names a YAML file applied between defaults and environment.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load with an injectable environment lookup.
func LoadFrom(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path, ok := lookup("CONFIG_FILE"); ok && path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the YAML file at path onto cfg.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read config file: %v", domain.ErrInvalidConfig, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parse config file %s: %v", domain.ErrInvalidConfig, path, err)
	}
	return nil
}

// applyEnv overlays environment variables onto c.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	e := envReader{lookup: lookup}

	e.setString("HOST", &c.Server.Host)
	e.setInt("PORT", &c.Server.Port)
	e.setString("ENVIRONMENT", &c.Server.Environment)
	e.setList("CORS_ORIGINS", &c.Server.CORSOrigins)
	e.setBool("TRUST_PROXY", &c.Server.TrustProxy)

	e.setString("DATA_PATH", &c.Corpus.DataPath)
	e.setInt("CHUNK_SIZE", &c.Corpus.ChunkSize)
	e.setInt("CHUNK_OVERLAP", &c.Corpus.ChunkOverlap)
	e.setInt("TOP_K", &c.Corpus.TopK)
	e.setFloat("MIN_SCORE", &c.Corpus.MinScore)
	e.setString("CORPUS_REFRESH_SCHEDULE", &c.Corpus.RefreshSchedule)
	e.setString("COMPANY_NAME", &c.Corpus.CompanyName)

	var provider string
	if e.setString("LLM_PROVIDER", &provider) {
		c.LLM.Provider = domain.AIProvider(strings.ToLower(provider))
	}
	e.setString("LLM_BASE_URL", &c.LLM.BaseURL)
	e.setString("LLM_MODEL", &c.LLM.Model)
	e.setString("LLM_API_KEY", &c.LLM.APIKey)
	e.setDuration("LLM_TIMEOUT", &c.LLM.Timeout)
	e.setFloat("LLM_TEMPERATURE", &c.LLM.Generation.Temperature)
	e.setFloat("LLM_TOP_P", &c.LLM.Generation.TopP)
	e.setInt("LLM_TOP_K", &c.LLM.Generation.TopK)
	e.setFloat("LLM_REPEAT_PENALTY", &c.LLM.Generation.RepeatPenalty)
	e.setInt("LLM_MAX_TOKENS", &c.LLM.Generation.MaxTokens)
	e.setInt("LLM_CONTEXT_WINDOW", &c.LLM.Generation.ContextWindow)

	e.setInt("RATE_LIMIT_REQUESTS", &c.RateLimit.Requests)
	e.setDuration("RATE_LIMIT_WINDOW", &c.RateLimit.Window)
	e.setInt("RATE_LIMIT_BURST", &c.RateLimit.Burst)

	e.setString("REDIS_URL", &c.RedisURL)
	e.setString("DATABASE_URL", &c.DatabaseURL)

	e.setString("JWT_SECRET", &c.Auth.JWTSecret)
	e.setString("ADMIN_USERNAME", &c.Auth.AdminUsername)
	e.setString("ADMIN_PASSWORD_HASH", &c.Auth.AdminPasswordHash)
	e.setDuration("TOKEN_TTL", &c.Auth.TokenTTL)

	e.setString("LOG_LEVEL", &c.Logging.Level)
	e.setString("LOG_FORMAT", &c.Logging.Format)

	return e.err()
}

// Validate checks the configuration for values the services cannot run with.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		add("port must be in 1..65535, got %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Corpus.DataPath) == "" {
		add("data path is required")
	}
	if c.Corpus.ChunkSize <= 0 {
		add("chunk size must be positive, got %d", c.Corpus.ChunkSize)
	}
	if c.Corpus.ChunkOverlap < 0 || c.Corpus.ChunkOverlap >= c.Corpus.ChunkSize {
		add("chunk overlap must be in 0..chunk size-1, got %d", c.Corpus.ChunkOverlap)
	}
	if c.Corpus.TopK < 0 {
		add("top_k must not be negative, got %d", c.Corpus.TopK)
	}
	if c.Corpus.MinScore < 0 {
		add("min score must not be negative, got %v", c.Corpus.MinScore)
	}
	if !c.LLM.Provider.IsValid() {
		add("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		add("llm timeout must be positive")
	}
	if c.RateLimit.Requests <= 0 {
		add("rate limit requests must be positive, got %d", c.RateLimit.Requests)
	}
	if c.RateLimit.Window <= 0 {
		add("rate limit window must be positive")
	}
	if c.Auth.AdminPasswordHash != "" && c.Auth.JWTSecret == "" {
		add("jwt secret is required when admin login is enabled")
	}
	if c.Auth.TokenTTL <= 0 {
		add("token ttl must be positive")
	}
	if f := strings.ToLower(c.Logging.Format); f != "text" && f != "json" {
		add("log format must be text or json, got %q", c.Logging.Format)
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		add("%v", err)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// IsDevelopment reports whether internal error details may be exposed.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, "development")
}

// LLMSettings returns the inference provider settings.
func (c *Config) LLMSettings() *domain.LLMSettings {
	return &domain.LLMSettings{
		Provider: c.LLM.Provider,
		Model:    c.LLM.Model,
		APIKey:   c.LLM.APIKey,
		BaseURL:  c.LLM.BaseURL,
	}
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.Logging.Level)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// envReader applies typed environment overrides, collecting parse errors.
type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) setString(key string, dst *string) bool {
	v, ok := e.get(key)
	if ok {
		*dst = v
	}
	return ok
}

func (e *envReader) setInt(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %q is not an integer", key, v))
			return
		}
		*dst = n
	}
}

func (e *envReader) setFloat(key string, dst *float64) {
	if v, ok := e.get(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %q is not a number", key, v))
			return
		}
		*dst = f
	}
}

func (e *envReader) setBool(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
			return
		}
		*dst = b
	}
}

func (e *envReader) setDuration(key string, dst *time.Duration) {
	if v, ok := e.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %q is not a duration", key, v))
			return
		}
		*dst = d
	}
}

func (e *envReader) setList(key string, dst *[]string) {
	if v, ok := e.get(key); ok {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*dst = out
	}
}

func (e *envReader) err() error {
	if len(e.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, errors.Join(e.errs...))
}
