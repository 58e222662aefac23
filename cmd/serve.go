package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/riyasyash/sqlgate/internal/config"
	"github.com/riyasyash/sqlgate/internal/db"
	"github.com/riyasyash/sqlgate/internal/guard"
	"github.com/riyasyash/sqlgate/internal/server"
)

var (
	serveDBPath     string
	serveListen     string
	serveConfigFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP tool server",
	Long: `Serve exposes the validation pipeline and execution gateway over HTTP:
POST /tools/validate_query, POST /tools/execute_sql, GET /tools/get_db_schema
and GET /healthz.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "SQLite database file (default: SQLGATE_DATABASE env var)")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default: :9001)")
	serveCmd.Flags().StringVar(&serveConfigFile, "config", "", "Config file path (optional)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigFile)
	if err != nil {
		return err
	}

	// Flags override config file and environment.
	if serveDBPath != "" {
		cfg.Database = serveDBPath
	}
	if serveListen != "" {
		cfg.Listen = serveListen
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	// Log to stderr so stdout stays clean for any protocol use.
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	connector := db.NewConnector(cfg.Database)
	validator := guard.NewValidator(connector, connector, log)
	gateway := db.NewGateway(connector, log)

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: server.New(connector, validator, gateway, log).Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Listen).Str("db", connector.Path()).Msg("starting sqlgate")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	return nil
}
