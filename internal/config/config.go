package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/qpig0218/Rootplanner/internal/providers"
)

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit config file; when empty, SearchPaths are tried.
	ConfigFile string
	// SearchPaths are directories searched for config.yaml.
	SearchPaths []string
	// EnvFiles are .env files loaded into the process environment, in order.
	// Variables already set are never overwritten.
	EnvFiles []string
}

// Load reads configuration with precedence
// environment > .env files > config file > defaults.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	v, err := initViper(opts)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.resolve()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles loads each existing file; missing files are skipped.
func loadEnvFiles(paths []string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("error reading env file %s: %w", path, err)
		}
	}
	return nil
}

// initViper sets up a viper instance with defaults, env bindings and config file.
func initViper(opts Options) (*viper.Viper, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("provider.type", defaults.Provider.Type)
	v.SetDefault("provider.endpoint", "")
	v.SetDefault("provider.deployment", "")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.api_version", defaults.Provider.APIVersion)
	v.SetDefault("provider.requests_per_minute", defaults.Provider.RequestsPerMinute)
	v.SetDefault("server.host", defaults.Server.Host)
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("server.static_dir", defaults.Server.StaticDir)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range opts.SearchPaths {
			v.AddConfigPath(p)
		}
	}

	// Config file is optional unless named explicitly
	if opts.ConfigFile != "" || len(opts.SearchPaths) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	return v, nil
}

// resolve expands ${ENV_VAR} references and normalizes values.
func (c *Config) resolve() {
	c.Provider.Type = strings.ToLower(strings.TrimSpace(ResolveEnvVars(c.Provider.Type)))
	c.Provider.Endpoint = strings.TrimSpace(ResolveEnvVars(c.Provider.Endpoint))
	c.Provider.Deployment = strings.TrimSpace(ResolveEnvVars(c.Provider.Deployment))
	c.Provider.APIKey = strings.TrimSpace(ResolveEnvVars(c.Provider.APIKey))
	c.Provider.APIVersion = strings.TrimSpace(ResolveEnvVars(c.Provider.APIVersion))
	c.Server.StaticDir = ResolveEnvVars(c.Server.StaticDir)
	if c.Provider.APIVersion == "" {
		c.Provider.APIVersion = providers.DefaultAzureAPIVersion
	}
}

// Validate checks values that would prevent the server from starting.
// Missing provider credentials are not an error: the server starts and
// schedule requests report the configuration problem.
func (c *Config) Validate() error {
	switch c.Provider.Type {
	case "", providers.AzureName, providers.OpenAIName:
	default:
		return fmt.Errorf("invalid provider.type %q: must be %s or %s",
			c.Provider.Type, providers.AzureName, providers.OpenAIName)
	}
	if c.Provider.RequestsPerMinute < 0 {
		return fmt.Errorf("invalid provider.requests_per_minute %d", c.Provider.RequestsPerMinute)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}
	return nil
}

// HasProvider reports whether both endpoint and API key are set
// (for "openai", only the key is required).
func (c *Config) HasProvider() bool {
	if c.Provider.Type == providers.OpenAIName {
		return c.Provider.APIKey != ""
	}
	return c.Provider.Endpoint != "" && c.Provider.APIKey != ""
}

// ClientConfig converts the provider section for providers.NewClient.
func (c *Config) ClientConfig() providers.ClientConfig {
	return providers.ClientConfig{
		Type:       c.Provider.Type,
		Endpoint:   c.Provider.Endpoint,
		APIKey:     c.Provider.APIKey,
		APIVersion: c.Provider.APIVersion,

		RequestsPerMinute: c.Provider.RequestsPerMinute,
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Rootplanner configuration
# Values use ${ENV_VAR} syntax to reference environment variables.
# Environment variables (or a .env file) override anything set here:
#   ENDPOINT_URL, DEPLOYMENT_NAME, AZURE_OPENAI_API_KEY, AZURE_OPENAI_API_VERSION,
#   AZURE_OPENAI_RPM, PORT

`)
	return os.WriteFile(path, append(header, data...), 0o600)
}
