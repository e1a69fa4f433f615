package cli

import (
	"context"
	"fmt"
	"time"

	"atscore/internal/ai"
	"atscore/internal/cache"
	"atscore/internal/config"
	"atscore/internal/observability"
	"atscore/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP scoring API",
	Long: `Start an HTTP server that scores resumes over a REST API.

Available endpoints:
- POST /ats/analyze: Score a resume, optionally against a job description or job URL
- POST /validate: Check resume structure and completeness
- POST /extract: Structure plain resume text with the AI model and score it
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
}

// applyServeFlags copies the flags that were set onto the server config
func applyServeFlags(cmd *cobra.Command, cfg *config.ServerConfig) {
	overrides := []struct {
		flag string
		dst  *string
	}{
		{"port", &cfg.Port},
		{"host", &cfg.Host},
		{"tls-mode", &cfg.TLS.Mode},
		{"cert-file", &cfg.TLS.CertFile},
		{"key-file", &cfg.TLS.KeyFile},
		{"ca-file", &cfg.TLS.CAFile},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.dst, _ = cmd.Flags().GetString(o.flag)
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	applyServeFlags(cmd, &cfg.Server)
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	om, err := observability.NewObservabilityManager(cfg.Observability, Version, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	// The cache only saves work, so serve without it when Redis is down
	reportCache, closeCache, err := cache.NewRedis(ctx, cfg.Cache)
	if err != nil {
		logger.LogError(err, "Report cache disabled")
		reportCache, closeCache = nil, func() error { return nil }
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.Warn("Failed to close report cache", "error", err)
		}
	}()

	deps := server.Dependencies{
		Engine:        engine,
		Cache:         reportCache,
		Fetcher:       newFetcher(cfg),
		Observability: om,
	}
	if cfg.AI.APIKey != "" {
		extractor, err := ai.NewExtractor(cfg.AI, logger)
		if err != nil {
			return err
		}
		deps.Extractor = extractor
	} else {
		logger.Warn("No AI API key configured, /extract is disabled")
	}

	return server.NewServer(cfg, deps, Version, logger).Start(ctx)
}
