/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the worktime engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Load YAML configuration and the working-time policy
  3. Initialize SQLite store (also the audit sink)
  4. Register Prometheus metrics
  5. Construct the engine components
  6. Start the API server and the metrics server
  7. Shut both down gracefully on SIGINT/SIGTERM

COMMAND-LINE FLAGS:
  -config  YAML configuration file (optional; defaults apply without it)
  -db      SQLite database path (overrides the config file)
           Use ":memory:" for an in-memory database

SERVERS:
  The API listens on server.listen_addr (default :8080). Prometheus
  metrics are served on a separate listener at server.metrics_addr
  (default :9090) so scrapes never mix with API traffic.

EXAMPLES:
  ./server -config=./worktime.yaml
  ./server -db=":memory:"

SEE ALSO:
  - config/config.go: Configuration and policy loading
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tempus/worktime-engine/api"
	"github.com/tempus/worktime-engine/config"
	"github.com/tempus/worktime-engine/engine"
	"github.com/tempus/worktime-engine/metrics"
	"github.com/tempus/worktime-engine/store/sqlite"
)

func main() {
	// .env is optional; flags and the config file win.
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("WORKTIME_CONFIG"), "YAML configuration file")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "worktime-engine").Logger()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("failed to load configuration")
		}
		cfg = loaded
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	policy := cfg.EnginePolicy()

	// Store. The SQLite store doubles as the audit sink.
	st, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to initialize database")
	}
	defer st.Close()

	// Metrics.
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// Engine components share one lock set so a balance check and its
	// approval commit cannot interleave with other mutations.
	locks := engine.NewEmployeeLocks()
	auditor := engine.NewAuditor(st, log, collector)
	ledger := engine.NewIntervalLedger(st, policy, auditor, locks, log)
	balance := engine.NewLeaveBalanceTracker(st, policy)
	workflow := engine.NewApprovalWorkflow(st, policy, balance, auditor, locks, log)
	compliance := engine.NewComplianceEvaluator(st, policy, collector)
	reports := engine.NewAggregationReporter(st, policy)

	handler := api.NewHandler(ledger, workflow, balance, compliance, reports, st, collector)
	router := api.NewRouter(handler)

	apiServer := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler(registry))
	metricsServer := &http.Server{
		Addr:        cfg.Server.MetricsAddr,
		Handler:     metricsMux,
		ReadTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", apiServer.Addr).Msg("api server listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", metricsServer.Addr).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}
