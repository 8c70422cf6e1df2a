package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	OIDC struct {
		Issuer       string
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}
	LLM struct {
		Provider    string
		APIKey      string
		Model       string
		BaseURL     string
		Temperature float64
		MaxTokens   int
		Timeout     time.Duration
		// NativeSchema sends each tool's JSON Schema to the provider's
		// structured output mode instead of only describing it in the prompt.
		NativeSchema bool
	}
	Upload struct {
		MaxBytes int64
	}
	Log struct {
		Level  string
		Format string
	}
	AdminEmail      string
	SessionLifetime time.Duration
	InsecureCookies bool
}

// Load reads config from environment (EDIFY_ prefix) and optional edify.yaml.
// OIDC settings are only checked by RequireOIDC so that offline commands such
// as migrate and generate can run without an identity provider.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EDIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("edify")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("session.lifetime", "720h")
	v.SetDefault("insecure_cookies", false)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.timeout", "5m")
	v.SetDefault("llm.native_schema", false)
	v.SetDefault("upload.max_bytes", 10<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.OIDC.Issuer = v.GetString("oidc.issuer")
	cfg.OIDC.ClientID = v.GetString("oidc.client_id")
	cfg.OIDC.ClientSecret = v.GetString("oidc.client_secret")
	cfg.OIDC.RedirectURL = v.GetString("oidc.redirect_url")
	cfg.LLM.Provider = v.GetString("llm.provider")
	cfg.LLM.APIKey = v.GetString("llm.api_key")
	cfg.LLM.Model = v.GetString("llm.model")
	cfg.LLM.BaseURL = v.GetString("llm.base_url")
	cfg.LLM.Temperature = v.GetFloat64("llm.temperature")
	cfg.LLM.MaxTokens = v.GetInt("llm.max_tokens")
	cfg.LLM.NativeSchema = v.GetBool("llm.native_schema")
	cfg.Upload.MaxBytes = v.GetInt64("upload.max_bytes")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")
	cfg.AdminEmail = v.GetString("admin_email")
	cfg.InsecureCookies = v.GetBool("insecure_cookies")

	lifetime, err := time.ParseDuration(v.GetString("session.lifetime"))
	if err != nil {
		return nil, fmt.Errorf("invalid EDIFY_SESSION_LIFETIME: %w", err)
	}
	cfg.SessionLifetime = lifetime

	timeout, err := time.ParseDuration(v.GetString("llm.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid EDIFY_LLM_TIMEOUT: %w", err)
	}
	cfg.LLM.Timeout = timeout

	if cfg.DB.Driver == "" {
		return nil, fmt.Errorf("EDIFY_DB_DRIVER is required (sqlite3, mysql, postgres)")
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("EDIFY_DB_DSN is required")
	}

	return cfg, nil
}

// RequireOIDC checks the settings needed by the login flow.
func (c *Config) RequireOIDC() error {
	if c.OIDC.Issuer == "" {
		return fmt.Errorf("EDIFY_OIDC_ISSUER is required")
	}
	if c.OIDC.ClientID == "" {
		return fmt.Errorf("EDIFY_OIDC_CLIENT_ID is required")
	}
	if c.OIDC.ClientSecret == "" {
		return fmt.Errorf("EDIFY_OIDC_CLIENT_SECRET is required")
	}
	if c.OIDC.RedirectURL == "" {
		return fmt.Errorf("EDIFY_OIDC_REDIRECT_URL is required")
	}
	return nil
}

// ValidateLLM checks the provider selection and its credentials.
func (c *Config) ValidateLLM() error {
	switch c.LLM.Provider {
	case "openai", "anthropic", "gemini":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("EDIFY_LLM_API_KEY is required for the %s provider", c.LLM.Provider)
		}
	case "mock":
	default:
		return fmt.Errorf("unsupported LLM provider %q: must be openai, anthropic, gemini, or mock", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("EDIFY_LLM_TEMPERATURE must be between 0 and 2")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("EDIFY_LLM_MAX_TOKENS must be positive")
	}
	return nil
}
