package providers

import (
	"os"
)

// TestConfig holds provider settings loaded from environment variables.
// This allows live tests to use the same variables as production.
type TestConfig struct {
	Endpoint   string
	Deployment string
	APIKey     string
	APIVersion string
}

// LoadTestConfig loads Azure OpenAI settings from environment variables.
func LoadTestConfig() TestConfig {
	return TestConfig{
		Endpoint:   os.Getenv("ENDPOINT_URL"),
		Deployment: os.Getenv("DEPLOYMENT_NAME"),
		APIKey:     os.Getenv("AZURE_OPENAI_API_KEY"),
		APIVersion: os.Getenv("AZURE_OPENAI_API_VERSION"),
	}
}

// HasAzure returns true if an Azure deployment is fully configured.
func (c TestConfig) HasAzure() bool {
	return c.Endpoint != "" && c.APIKey != "" && c.Deployment != ""
}

// NewAzureClient creates an Azure client from test config.
// Returns nil if not configured.
func (c TestConfig) NewAzureClient() *OpenAIClient {
	if !c.HasAzure() {
		return nil
	}
	client, err := NewAzureClient(AzureConfig{
		Endpoint:   c.Endpoint,
		APIKey:     c.APIKey,
		APIVersion: c.APIVersion,
	})
	if err != nil {
		return nil
	}
	return client
}
