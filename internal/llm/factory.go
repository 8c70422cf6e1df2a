package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/config"
)

// Config selects and configures a provider.
type Config struct {
	// Provider is one of "openai", "anthropic", "gemini" or "mock".
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// ConfigFrom extracts the provider settings from the application config.
func ConfigFrom(c *config.Config) Config {
	return Config{
		Provider: c.LLM.Provider,
		APIKey:   c.LLM.APIKey,
		Model:    c.LLM.Model,
		BaseURL:  c.LLM.BaseURL,
	}
}

// New creates the configured Provider wrapped with request logging.
func New(ctx context.Context, cfg Config, log *zap.Logger) (Provider, error) {
	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "", "openai":
		base, err = NewOpenAIProvider(cfg)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return WithLogging(base, log), nil
}
