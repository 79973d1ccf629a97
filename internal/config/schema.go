package config

// Config holds rootplanner configuration.
// Loaded once at startup and never mutated afterwards.
type Config struct {
	Provider ProviderCfg `mapstructure:"provider" yaml:"provider"`
	Server   ServerCfg   `mapstructure:"server" yaml:"server"`
	Log      LogCfg      `mapstructure:"log" yaml:"log"`
}

// ProviderCfg configures the chat completion provider.
type ProviderCfg struct {
	Type       string `mapstructure:"type" yaml:"type"`               // "azure" or "openai"
	Endpoint   string `mapstructure:"endpoint" yaml:"endpoint"`       // Azure resource URL, or OpenAI-compatible base URL
	Deployment string `mapstructure:"deployment" yaml:"deployment"`   // Azure deployment name (model name for "openai")
	APIKey     string `mapstructure:"api_key" yaml:"api_key"`         // supports ${ENV_VAR} syntax
	APIVersion string `mapstructure:"api_version" yaml:"api_version"` // Azure only

	// RequestsPerMinute throttles upstream calls; 0 disables throttling.
	RequestsPerMinute int `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host      string `mapstructure:"host" yaml:"host"`
	Port      int    `mapstructure:"port" yaml:"port"`
	StaticDir string `mapstructure:"static_dir" yaml:"static_dir"` // SPA assets; index.html is the fallback page
}

// LogCfg configures the slog handler.
type LogCfg struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderCfg{
			Type:       "azure",
			Endpoint:   "${ENDPOINT_URL}",
			Deployment: "${DEPLOYMENT_NAME}",
			APIKey:     "${AZURE_OPENAI_API_KEY}",
			APIVersion: "2025-01-01-preview",
		},
		Server: ServerCfg{
			Host:      "0.0.0.0",
			Port:      3000,
			StaticDir: ".",
		},
		Log: LogCfg{
			Level:  "info",
			Format: "text",
		},
	}
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"provider.type":                "PROVIDER_TYPE",
	"provider.endpoint":            "ENDPOINT_URL",
	"provider.deployment":          "DEPLOYMENT_NAME",
	"provider.api_key":             "AZURE_OPENAI_API_KEY",
	"provider.api_version":         "AZURE_OPENAI_API_VERSION",
	"provider.requests_per_minute": "AZURE_OPENAI_RPM",
	"server.host":                  "HOST",
	"server.port":                  "PORT",
	"server.static_dir":            "STATIC_DIR",
	"log.level":                    "LOG_LEVEL",
	"log.format":                   "LOG_FORMAT",
}
