package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/amcprep/internal/store"
)

// ErrNotConfigured is returned by NewProviderFromEnv when no provider has
// an API key. Callers treat it as "AI features disabled".
var ErrNotConfigured = errors.New("no LLM provider configured")

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry and logging middleware.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log logrus.FieldLogger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller -> timeout -> retry -> logging -> base
	logged := WithLogging(base, eventRepo, log)
	retried := WithRetry(logged, cfg.Retry)
	return WithTimeout(retried, cfg.Timeout), nil
}

type timeoutProvider struct {
	Provider
	timeout time.Duration
}

// WithTimeout bounds every Generate call on p. A non-positive timeout
// returns p unchanged.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}
	return &timeoutProvider{Provider: p, timeout: timeout}
}

func (p *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.Provider.Generate(ctx, req)
}

func (p *timeoutProvider) Name() string { return ProviderName(p.Provider) }

// ResolveConfig picks the provider configuration from the environment.
// Explicit AMCPREP_* settings win when they validate; otherwise the
// standard provider key variables are checked.
func ResolveConfig() (Config, bool) {
	cfg := ConfigFromEnv()
	if cfg.Validate() == nil {
		return cfg, true
	}
	return DiscoverConfig()
}

// NewProviderFromEnv resolves configuration from the environment and
// builds the provider. It returns ErrNotConfigured when no key is set.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo, log logrus.FieldLogger) (Provider, error) {
	cfg, ok := ResolveConfig()
	if !ok {
		return nil, ErrNotConfigured
	}
	return NewProvider(ctx, cfg, eventRepo, log)
}
