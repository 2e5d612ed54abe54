package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"vertical/internal/audit"
	auditmetrics "vertical/internal/audit/metrics"
	auditstore "vertical/internal/audit/store"
	authmetrics "vertical/internal/auth/metrics"
	authservice "vertical/internal/auth/service"
	contractstore "vertical/internal/auth/store/contract"
	identstore "vertical/internal/auth/store/identification"
	"vertical/internal/platform/config"
	"vertical/internal/platform/database"
	"vertical/internal/platform/health"
	"vertical/internal/platform/logger"
	"vertical/internal/platform/metrics"
	"vertical/internal/platform/tracer"
	relhandler "vertical/internal/reliability/handler"
	"vertical/internal/reliability/hasher"
	relmetrics "vertical/internal/reliability/metrics"
	relservice "vertical/internal/reliability/service"
	relstore "vertical/internal/reliability/store"
	httptransport "vertical/internal/transport/http"
	"vertical/pkg/platform/middleware/request"
)

const (
	readHeaderTimeout = 5 * time.Second
	healthTimeout     = 2 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	root := logger.New(cfg.LogLevel)
	appLog := logger.Named(root, logger.App)

	appLog.Info("initializing vertical",
		"addr", cfg.Addr,
		"metrics_addr", cfg.MetricsAddr,
		"hunter_table", cfg.Hunter.Schema+"."+cfg.Hunter.Table,
		"delta_days", cfg.Hunter.DeltaDays,
	)

	authDB, err := database.New(cfg.AuthDB)
	if err != nil {
		return fmt.Errorf("auth database: %w", err)
	}
	defer authDB.Close() //nolint:errcheck // shutdown path
	hunterDB, err := database.New(cfg.HunterDB)
	if err != nil {
		return fmt.Errorf("hunter database: %w", err)
	}
	defer hunterDB.Close() //nolint:errcheck // shutdown path

	if err := metrics.RegisterDBStats(prometheus.DefaultRegisterer, "auth", authDB.DB()); err != nil {
		return err
	}
	if err := metrics.RegisterDBStats(prometheus.DefaultRegisterer, "hunter", hunterDB.DB()); err != nil {
		return err
	}

	contracts := contractstore.NewPostgres(authDB.DB(), authDB.OpTimeout())
	authSvc := authservice.New(
		contracts,
		identstore.NewPostgres(authDB.DB(), authDB.OpTimeout()),
		authservice.WithLogger(logger.Named(root, logger.Auth)),
		authservice.WithMetrics(authmetrics.New()),
	)

	submissions := relstore.NewPostgres(hunterDB.DB(), cfg.Hunter.Schema, cfg.Hunter.Table, hunterDB.OpTimeout())
	hunterLog := logger.Named(root, logger.Hunter)
	relSvc := relservice.New(
		submissions,
		hasher.NewPBKDF2(cfg.Hunter.HashSalt, cfg.Hunter.HashIterations),
		cfg.Hunter.DeltaDays,
		relservice.WithLogger(hunterLog),
		relservice.WithMetrics(relmetrics.New()),
		relservice.WithTracer(tracer.NewOTel()),
		relservice.WithTimeout(cfg.Hunter.QueryTimeout),
	)

	recorder := audit.New(
		auditstore.NewPostgres(authDB.DB(), authDB.OpTimeout()),
		audit.WithLogger(logger.Named(root, logger.Audit)),
		audit.WithAccessLogger(logger.Named(root, logger.Access)),
		audit.WithMetrics(auditmetrics.New()),
		audit.WithIgnorePaths(cfg.AuditIgnore...),
	)

	healthHandler := health.New(appLog, healthTimeout)
	healthHandler.RegisterCheck("auth_db", authSvc.Ping)
	healthHandler.RegisterCheck("hunter_db", submissions.Ping)

	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:       appLog,
		AuthLogger:   logger.Named(root, logger.Auth),
		Recorder:     recorder,
		Authorizer:   authSvc,
		Health:       healthHandler,
		Reliability:  relhandler.New(relSvc, hunterLog),
		Latency:      request.NewMetrics(),
		MaxBodyBytes: cfg.MaxBodyBytes,

		TrustedProxies: cfg.TrustedProxies,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	servers := []*http.Server{srv}
	if cfg.MetricsAddr != "" {
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metricsMux(),
			ReadHeaderTimeout: readHeaderTimeout,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, len(servers))
	for _, s := range servers {
		serve(appLog, s, errCh)
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		appLog.Error("server error", "error", err)
	}

	appLog.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, s := range servers {
		errs = append(errs, s.Shutdown(shutdownCtx))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	appLog.Info("server stopped")
	return nil
}

func serve(log *slog.Logger, srv *http.Server, errCh chan<- error) {
	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server %s: %w", srv.Addr, err)
		}
	}()
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(prometheus.DefaultGatherer))
	return mux
}
