package main

import (
	"context"
	"fmt"
	"log/slog"

	"namelease/internal/ledger"
	"namelease/internal/notify"
	"namelease/internal/platform/blob"
	"namelease/internal/platform/config"
	"namelease/internal/platform/postgres"
	redisclient "namelease/internal/platform/redis"
	"namelease/internal/registrar/service"
	"namelease/internal/registrar/snapshot"
	"namelease/internal/registrar/store"
)

// backends bundles the persistence layer selected by configuration. The
// same store instance serves the registrar interfaces and the snapshot
// dumper so every consumer observes one copy of the data.
type backends struct {
	leases   service.LeaseStore
	settings service.SettingsStore
	dumper   snapshot.Dumper
	ledger   ledger.Store
	close    func()
}

// openBackends builds the lease, settings, and ledger stores for the
// configured backend. Backends without a durable journal pair with the
// in-memory ledger, so custody balances reset on restart there.
func openBackends(ctx context.Context, cfg *config.Config, log *slog.Logger) (*backends, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		st := store.NewMemory()
		return &backends{
			leases:   st,
			settings: st,
			dumper:   st,
			ledger:   ledger.NewMemory(),
			close:    func() {},
		}, nil

	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		st := store.NewPostgres(db)
		if err := st.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate lease store: %w", err)
		}
		lg := ledger.NewPostgres(db)
		if err := lg.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate ledger: %w", err)
		}
		return &backends{
			leases:   st,
			settings: st,
			dumper:   st,
			ledger:   lg,
			close:    func() { _ = db.Close() },
		}, nil

	case config.StoreRedis:
		rc, err := redisclient.New(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		if rc == nil {
			return nil, fmt.Errorf("store backend %q requires redis.url", cfg.Store.Backend)
		}
		st := store.NewRedis(rc.Client)
		log.Warn("ledger journal is in-memory with the redis backend, custody balances reset on restart")
		return &backends{
			leases:   st,
			settings: st,
			dumper:   st,
			ledger:   ledger.NewMemory(),
			close:    func() { _ = rc.Close() },
		}, nil

	case config.StoreSQLite:
		st, err := store.NewSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		log.Warn("ledger journal is in-memory with the sqlite backend, custody balances reset on restart")
		return &backends{
			leases:   st,
			settings: st,
			dumper:   st,
			ledger:   ledger.NewMemory(),
			close:    func() { _ = st.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// openBlob builds the snapshot destination, or nil when export is
// disabled.
func openBlob(ctx context.Context, cfg *config.Config) (snapshot.Blob, error) {
	switch cfg.Blob.Backend {
	case config.BlobNone, "":
		return nil, nil
	case config.BlobMemory:
		return blob.NewMemory(), nil
	case config.BlobFS:
		st, err := blob.NewFS(cfg.Blob.FSRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to open fs blob store: %w", err)
		}
		return st, nil
	case config.BlobS3:
		st, err := blob.NewS3(ctx, cfg.Blob.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to open s3 blob store: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Blob.Backend)
	}
}

// openSink builds the event delivery sink. Without brokers events stay
// on an in-process ring visible to diagnostics.
func openSink(ctx context.Context, cfg *config.Config, log *slog.Logger) (notify.Sink, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("no kafka brokers configured, events stay in-process")
		return notify.NewMemorySink(cfg.Kafka.Buffer), nil
	}
	sink, err := notify.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to kafka: %w", err)
	}
	log.Info("kafka sink connected",
		slog.String("topic", cfg.Kafka.Topic),
		slog.Any("brokers", cfg.Kafka.Brokers),
	)
	return sink, nil
}
