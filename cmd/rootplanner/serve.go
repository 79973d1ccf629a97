package main

import (
	"errors"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/qpig0218/Rootplanner/internal/metrics"
	"github.com/qpig0218/Rootplanner/internal/providers"
	"github.com/qpig0218/Rootplanner/internal/schedule"
	"github.com/qpig0218/Rootplanner/internal/server"
)

var (
	serveHost      string
	servePort      string
	serveStaticDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Rootplanner server",
	Long: `Start the Rootplanner HTTP server.

The server provides:
  - POST /api/schedule  - plan visits from case details
  - /health             - basic server health check
  - /ready              - readiness check (provider configuration)
  - /metrics            - Prometheus metrics
  - /swagger            - API documentation
  - everything else     - the frontend (index.html fallback)

A missing endpoint or API key does not stop the server; schedule requests
answer with a configuration error until it is restarted with credentials.

Examples:
  rootplanner serve                     # Start on PORT or 3000
  rootplanner serve --port 8080         # Start on custom port
  rootplanner serve --static-dir ./web  # Serve a different frontend`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("host") {
			cfg.Server.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			port, err := strconv.Atoi(servePort)
			if err != nil {
				return errors.New("--port must be a number")
			}
			cfg.Server.Port = port
		}
		if cmd.Flags().Changed("static-dir") {
			cfg.Server.StaticDir = serveStaticDir
		}

		logger := cfg.Log.NewLogger(os.Stdout)

		client, err := providers.NewClient(cfg.ClientConfig())
		switch {
		case errors.Is(err, providers.ErrNotConfigured):
			logger.Warn("completion provider not configured",
				"type", cfg.Provider.Type,
				"endpoint_set", cfg.Provider.Endpoint != "",
				"api_key_set", cfg.Provider.APIKey != "")
			client = nil
		case err != nil:
			return err
		}

		validator, err := schedule.NewValidator()
		if err != nil {
			return err
		}

		recorder := metrics.NewRecorder()

		planner := schedule.NewPlanner(schedule.Config{
			Client:     client,
			Deployment: cfg.Provider.Deployment,
			Validator:  validator,
			Metrics:    recorder,
			Logger:     logger,
		})

		srv, err := server.New(server.Config{
			Host:      cfg.Server.Host,
			Port:      strconv.Itoa(cfg.Server.Port),
			Planner:   planner,
			Metrics:   recorder,
			StaticDir: cfg.Server.StaticDir,
			Logger:    logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "0.0.0.0", "Host to bind to (overrides HOST)")
	serveCmd.Flags().StringVar(&servePort, "port", "3000", "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&serveStaticDir, "static-dir", ".", "Frontend directory (overrides STATIC_DIR)")

	rootCmd.AddCommand(serveCmd)
}
