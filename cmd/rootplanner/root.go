package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qpig0218/Rootplanner/internal/api"
	"github.com/qpig0218/Rootplanner/internal/config"
	"github.com/qpig0218/Rootplanner/internal/home"
	"github.com/qpig0218/Rootplanner/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "rootplanner",
	Short: "Home-visit route planner backed by Azure OpenAI",
	Long: `Rootplanner plans a day of home visits. Case details (departure point,
patients, addresses, time windows) are sent to an Azure OpenAI deployment and
the visit schedule is extracted from the reply.

Configuration comes from environment variables (or a .env file):
  ENDPOINT_URL               Azure OpenAI resource endpoint
  DEPLOYMENT_NAME            chat deployment name
  AZURE_OPENAI_API_KEY       API key
  AZURE_OPENAI_API_VERSION   API version (default 2025-01-01-preview)
  PORT                       listen port (default 3000)`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.rootplanner/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "rootplanner home directory (default: ~/.rootplanner)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}

// getHome resolves the home directory without creating it.
func getHome() (*home.Dir, error) {
	return home.New(homeDir)
}

// loadConfig loads configuration from --config, ./config.yaml or the home
// directory, after applying ./.env and the home .env file.
func loadConfig() (*config.Config, *home.Dir, error) {
	h, err := getHome()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(config.Options{
		ConfigFile:  cfgFile,
		SearchPaths: []string{".", h.Path()},
		EnvFiles:    []string{home.EnvFileName, h.EnvPath()},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, h, nil
}
