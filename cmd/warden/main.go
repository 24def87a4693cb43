package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/warden-authz/warden/internal/app"
	"github.com/warden-authz/warden/internal/auth"
	"github.com/warden-authz/warden/internal/authz"
	"github.com/warden-authz/warden/internal/items"
	"github.com/warden-authz/warden/internal/ledger"
	ledgerhttp "github.com/warden-authz/warden/internal/ledger/http"
	"github.com/warden-authz/warden/internal/observability"
	"github.com/warden-authz/warden/internal/platform/cache"
	"github.com/warden-authz/warden/internal/platform/db"
	"github.com/warden-authz/warden/internal/tenants"
	"github.com/warden-authz/warden/internal/users"
)

// decisionSink fans every authorization decision out to the metrics registry
// and the ledger recorder.
type decisionSink struct {
	recorder *ledger.Recorder
	metrics  *observability.Metrics
}

func (s decisionSink) Record(d ledger.Decision) {
	s.metrics.Decision(d.Allowed, d.Reason)
	s.recorder.Record(d)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	if cfg.AuditSigningKey == "" {
		logger.Warn("audit signing key not configured, ledger entries will be degraded")
	}
	signer := ledger.NewSigner(cfg.AuditSigningKey)
	ledgerRepo := ledger.NewRepository(pool)
	recorder := ledger.NewRecorder(ledgerRepo, signer, logger, ledger.WithStats(metrics))
	ledgerService := ledger.NewService(ledgerRepo, signer)

	registry := authz.DefaultRegistry()
	if missing := registry.Unregistered(); len(missing) > 0 {
		// Unregistered permissions deny every request; that is a wiring bug,
		// not a runtime condition to limp through.
		logger.Error("permissions missing from policy registry", slog.Any("permissions", missing))
		os.Exit(1)
	}
	resolver := authz.NewResolver(authz.DefaultBindings(), registry)
	guard := authz.Middleware{
		Resolver: resolver,
		Recorder: decisionSink{recorder: recorder, metrics: metrics},
		Logger:   logger,
	}

	tokens := auth.NewTokenStore(redisClient, cfg.SessionTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens)
	authHandler := auth.NewHandler(logger, authService, cfg.DefaultTenantID)

	tenantsRepo := tenants.NewRepository(pool)
	tenantsService := tenants.NewService(tenantsRepo)
	tenantsHandler := tenants.NewHandler(logger, tenantsService, guard)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, guard)

	itemsRepo := items.NewRepository(pool)
	itemsHandler := items.NewHandler(logger, itemsRepo, guard)

	ledgerHandler := ledgerhttp.NewHandler(logger, ledgerService, guard)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Metrics:        metrics,
		Authenticator:  auth.Authenticator(authService, tenantsService, logger),
		AuthHandler:    authHandler,
		UsersHandler:   usersHandler,
		ItemsHandler:   itemsHandler,
		TenantsHandler: tenantsHandler,
		LedgerHandler:  ledgerHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return recorder.Run(groupCtx)
	})

	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
		os.Exit(1)
	}
}
