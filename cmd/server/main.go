// Command server runs the namelease HTTP API: the domain leasing
// registry, its custody ledger, and the notification pipeline behind
// one chi router. Wiring lives here and in wiring.go; behaviour lives
// in the internal packages.
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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	jwttoken "namelease/internal/jwt_token"
	"namelease/internal/ledger"
	"namelease/internal/notify"
	"namelease/internal/platform/config"
	"namelease/internal/platform/httpserver"
	"namelease/internal/platform/logger"
	platmetrics "namelease/internal/platform/metrics"
	"namelease/internal/platform/middleware"
	"namelease/internal/registrar/handler"
	regmetrics "namelease/internal/registrar/metrics"
	"namelease/internal/registrar/service"
	"namelease/internal/registrar/snapshot"
	id "namelease/pkg/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "namelease-server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, &cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	blobStore, err := openBlob(ctx, &cfg)
	if err != nil {
		return err
	}

	sink, err := openSink(ctx, &cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = sink.Close() }()

	publisher := notify.NewPublisher(cfg.Kafka.Buffer, notify.WithPublisherLogger(log))
	worker := notify.NewWorker(sink, publisher.Inbox(), notify.WithWorkerLogger(log))

	ledgerSvc := ledger.New(b.ledger, ledger.WithLogger(log))

	svc := service.New(b.leases, b.settings, ledgerSvc,
		service.WithLogger(log),
		service.WithNotifier(publisher),
		service.WithMetrics(regmetrics.New()),
	)

	if cfg.Registry.AdminAccountID != "" {
		adminID, err := id.ParseAccountID(cfg.Registry.AdminAccountID)
		if err != nil {
			return fmt.Errorf("invalid registry.admin_account_id: %w", err)
		}
		if err := svc.Seed(ctx, adminID, cfg.Registry.PricePerYear, cfg.Registry.RenewalMultiplier); err != nil {
			return fmt.Errorf("failed to seed registry: %w", err)
		}
	} else {
		log.Warn("registry.admin_account_id not set, admin operations stay locked until the registry is seeded")
	}

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, jwttoken.Issuer, jwttoken.Audience)

	// Assigned only when a blob backend is configured so the handler's
	// nil check sees a nil interface, not a typed nil.
	var snapshotter handler.Snapshotter
	if blobStore != nil {
		snapshotter = snapshot.New(b.dumper, b.settings, blobStore, snapshot.WithLogger(log))
	}

	httpMetrics := platmetrics.New()
	limiter := middleware.NewLimiterStore(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	limiter.StartJanitor(ctx, 2*time.Minute)

	router := chi.NewRouter()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestID,
		middleware.RequestTime,
		middleware.Logger(log),
		middleware.Timeout(cfg.Server.RequestTimeout.Std()),
		middleware.ContentTypeJSON,
		middleware.Latency(httpMetrics),
		middleware.RateLimit(limiter, httpMetrics, log),
	)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	h := handler.New(svc, ledgerSvc, snapshotter, jwtService, log)
	h.Register(router)

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Run(gctx)
	})

	g.Go(func() error {
		log.Info("http server listening",
			slog.String("addr", cfg.Server.Addr),
			slog.String("store", cfg.Store.Backend),
			slog.String("blob", cfg.Blob.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
		defer cancel()

		// Drain in-flight requests before closing the publisher: handlers
		// may still emit until Shutdown returns.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		publisher.Close()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}
