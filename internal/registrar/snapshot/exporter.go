// Package snapshot exports the full registry state to archival storage.
// An export is an operator action: it reads everything, so it never runs
// on the request path and is gated to the registry admin.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"namelease/internal/registrar/models"
	dErrors "namelease/pkg/domain-errors"
	"namelease/pkg/platform/sentinel"
	"namelease/pkg/requestcontext"
)

// Dumper enumerates every lease record. Request handling never uses this;
// only exports do.
type Dumper interface {
	DumpLeases(ctx context.Context) ([]models.Lease, error)
}

// SettingsStore loads the registry settings record.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (*models.Settings, error)
}

// Blob receives the finished archive.
type Blob interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Archive is the exported document. Leases are ordered by name so two
// exports of the same state are byte-identical.
type Archive struct {
	TakenAt  time.Time        `json:"taken_at"`
	Settings *models.Settings `json:"settings"`
	Leases   []models.Lease   `json:"leases"`
}

// DefaultPrefix locates archives inside the blob store.
const DefaultPrefix = "snapshots"

// Exporter writes registry archives to a blob store.
type Exporter struct {
	leases   Dumper
	settings SettingsStore
	blob     Blob
	logger   *slog.Logger
	prefix   string
}

// Option configures optional exporter dependencies.
type Option func(*Exporter)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// WithPrefix overrides the archive key prefix.
func WithPrefix(prefix string) Option {
	return func(e *Exporter) {
		e.prefix = prefix
	}
}

// New constructs an exporter over the given stores.
func New(leases Dumper, settings SettingsStore, blob Blob, opts ...Option) *Exporter {
	e := &Exporter{
		leases:   leases,
		settings: settings,
		blob:     blob,
		logger:   slog.Default(),
		prefix:   DefaultPrefix,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes one archive and returns its key. Only the registry admin
// may export; the check reads the same persisted settings record the
// service consults.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	caller := requestcontext.CallerID(ctx)
	if caller.IsNil() {
		return "", dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	cfg, err := e.settings.LoadSettings(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeInternal, "registry settings are not seeded")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry settings")
	}
	if !cfg.IsAdmin(caller) {
		return "", dErrors.New(dErrors.CodeUnauthorized, "caller is not the registry admin")
	}

	leases, err := e.leases.DumpLeases(ctx)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to enumerate leases")
	}

	takenAt := requestcontext.Now(ctx)
	archive := Archive{
		TakenAt:  takenAt,
		Settings: cfg,
		Leases:   leases,
	}
	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode archive")
	}

	key := fmt.Sprintf("%s/%s.json", e.prefix, takenAt.UTC().Format("2006-01-02T15-04-05Z"))
	if err := e.blob.Put(ctx, key, data, "application/json"); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to store archive")
	}

	e.logger.InfoContext(ctx, "snapshot exported",
		"request_id", requestcontext.RequestID(ctx),
		"key", key,
		"leases", len(leases),
	)
	return key, nil
}
