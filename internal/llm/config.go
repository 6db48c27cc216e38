package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config selects and configures the model behind the tutor.
type Config struct {
	// Provider is one of "gemini", "anthropic", "openai", "openrouter"
	// or "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries. Zero disables it.
	Timeout time.Duration
}

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// OpenAIConfig configures the OpenAI provider. BaseURL points it at a
// compatible API.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// OpenRouterConfig configures the OpenRouter provider.
type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures retries of transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig uses Gemini with vision-capable default models everywhere.
func DefaultConfig() Config {
	return Config{
		Provider:   "gemini",
		Anthropic:  AnthropicConfig{Model: "claude-haiku-4-5"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-2.5-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 90 * time.Second,
	}
}

// envBindings maps AMCPREP_* variables to the string fields they set.
func (c *Config) envBindings() map[string]*string {
	return map[string]*string{
		"AMCPREP_LLM_PROVIDER":       &c.Provider,
		"AMCPREP_ANTHROPIC_API_KEY":  &c.Anthropic.APIKey,
		"AMCPREP_ANTHROPIC_MODEL":    &c.Anthropic.Model,
		"AMCPREP_OPENAI_API_KEY":     &c.OpenAI.APIKey,
		"AMCPREP_OPENAI_MODEL":       &c.OpenAI.Model,
		"AMCPREP_OPENAI_BASE_URL":    &c.OpenAI.BaseURL,
		"AMCPREP_GEMINI_API_KEY":     &c.Gemini.APIKey,
		"AMCPREP_GEMINI_MODEL":       &c.Gemini.Model,
		"AMCPREP_OPENROUTER_API_KEY": &c.OpenRouter.APIKey,
		"AMCPREP_OPENROUTER_MODEL":   &c.OpenRouter.Model,
	}
}

// ConfigFromEnv applies AMCPREP_* variables on top of DefaultConfig.
// Malformed numeric values keep their defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	for name, field := range cfg.envBindings() {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}

	if v := os.Getenv("AMCPREP_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("AMCPREP_LLM_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Retry.MaxAttempts = n
		}
	}
	return cfg
}

// discoveryOrder lists the conventional key variables in the order they
// are checked.
var discoveryOrder = []struct {
	env      string
	provider string
	key      func(*Config) *string
}{
	{"GEMINI_API_KEY", "gemini", func(c *Config) *string { return &c.Gemini.APIKey }},
	{"OPENAI_API_KEY", "openai", func(c *Config) *string { return &c.OpenAI.APIKey }},
	{"ANTHROPIC_API_KEY", "anthropic", func(c *Config) *string { return &c.Anthropic.APIKey }},
	{"OPENROUTER_API_KEY", "openrouter", func(c *Config) *string { return &c.OpenRouter.APIKey }},
}

// DiscoverConfig returns a default Config for the first provider whose
// conventional key variable is set.
func DiscoverConfig() (Config, bool) {
	for _, d := range discoveryOrder {
		if k := os.Getenv(d.env); k != "" {
			cfg := DefaultConfig()
			cfg.Provider = d.provider
			*d.key(&cfg) = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case "anthropic":
		key = c.Anthropic.APIKey
	case "openai":
		key = c.OpenAI.APIKey
	case "gemini":
		key = c.Gemini.APIKey
	case "openrouter":
		key = c.OpenRouter.APIKey
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("an API key is required for the %s provider", c.Provider)
	}
	return nil
}
