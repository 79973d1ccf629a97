package main

import (
	"os"

	"github.com/qpig0218/Rootplanner/internal/api"
	"github.com/qpig0218/Rootplanner/internal/server/endpoints"
)

// ServerURLEnv overrides the default --server value.
const ServerURLEnv = "ROOTPLANNER_SERVER"

var serverURL string

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func defaultServerURL() string {
	if u := os.Getenv(ServerURLEnv); u != "" {
		return u
	}
	return "http://localhost:3000"
}

func init() {
	registry := api.NewRegistry()
	for _, ep := range endpoints.Commands() {
		registry.Register(ep)
	}

	apiCmd := registry.BuildCommands(getServerURL)

	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", defaultServerURL(), "Server URL (env "+ServerURLEnv+")",
	)

	rootCmd.AddCommand(apiCmd)
}
