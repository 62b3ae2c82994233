package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"namelease/internal/registrar/models"
	id "namelease/pkg/domain"
	"namelease/pkg/platform/sentinel"
)

// SQLiteStore persists leases and settings in a single SQLite file. Meant
// for single-node deployments and CLI use where running PostgreSQL is
// overkill but state must survive restarts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (and if needed creates) the database at path and ensures
// the schema exists. Pass ":memory:" for an ephemeral store.
func NewSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "namelease.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite serializes internally but rejects concurrent writers
	// on one connection pool; a single connection keeps writes ordered.
	db.SetMaxOpenConns(1)

	const schema = `
		CREATE TABLE IF NOT EXISTS leases (
			name           TEXT PRIMARY KEY,
			owner          TEXT NOT NULL,
			registered_at  INTEGER NOT NULL,
			duration_years INTEGER NOT NULL,
			paid_amount    INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS registry_settings (
			singleton          INTEGER PRIMARY KEY CHECK (singleton = 1),
			admin_id           TEXT NOT NULL,
			price_per_year     INTEGER NOT NULL,
			renewal_multiplier INTEGER NOT NULL,
			paused             INTEGER NOT NULL,
			updated_at         INTEGER NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create lease schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Find retrieves a lease by exact name match.
// Returns sentinel.ErrNotFound if no record exists.
func (s *SQLiteStore) Find(ctx context.Context, name string) (*models.Lease, error) {
	const query = `
		SELECT name, owner, registered_at, duration_years, paid_amount
		FROM leases
		WHERE name = ?
	`
	var (
		lease    models.Lease
		ownerRaw string
		regAtNs  int64
	)
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&lease.Name, &ownerRaw, &regAtNs, &lease.DurationYears, &lease.PaidAmount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find lease: %w", err)
	}
	if err := (&lease.Owner).UnmarshalText([]byte(ownerRaw)); err != nil {
		return nil, fmt.Errorf("decode lease owner: %w", err)
	}
	lease.RegisteredAt = time.Unix(0, regAtNs).UTC()
	return &lease, nil
}

// Put upserts the whole lease record.
func (s *SQLiteStore) Put(ctx context.Context, lease *models.Lease) error {
	const query = `
		INSERT INTO leases (name, owner, registered_at, duration_years, paid_amount)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			owner          = excluded.owner,
			registered_at  = excluded.registered_at,
			duration_years = excluded.duration_years,
			paid_amount    = excluded.paid_amount
	`
	_, err := s.db.ExecContext(ctx, query,
		lease.Name, lease.Owner.String(), lease.RegisteredAt.UnixNano(), lease.DurationYears, lease.PaidAmount,
	)
	if err != nil {
		return fmt.Errorf("put lease: %w", err)
	}
	return nil
}

// LoadSettings retrieves the settings singleton.
// Returns sentinel.ErrNotFound until the registry has been seeded.
func (s *SQLiteStore) LoadSettings(ctx context.Context) (*models.Settings, error) {
	const query = `
		SELECT admin_id, price_per_year, renewal_multiplier, paused, updated_at
		FROM registry_settings
		WHERE singleton = 1
	`
	var (
		settings    models.Settings
		adminRaw    string
		paused      int
		updatedAtNs int64
	)
	err := s.db.QueryRowContext(ctx, query).Scan(
		&adminRaw, &settings.PricePerYear, &settings.RenewalMultiplier, &paused, &updatedAtNs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load settings: %w", err)
	}
	admin, err := id.ParseAccountID(adminRaw)
	if err != nil {
		return nil, fmt.Errorf("decode admin id: %w", err)
	}
	settings.AdminID = admin
	settings.Paused = paused != 0
	settings.UpdatedAt = time.Unix(0, updatedAtNs).UTC()
	return &settings, nil
}

// SaveSettings upserts the settings singleton.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings *models.Settings) error {
	const query = `
		INSERT INTO registry_settings (singleton, admin_id, price_per_year, renewal_multiplier, paused, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (singleton) DO UPDATE SET
			admin_id           = excluded.admin_id,
			price_per_year     = excluded.price_per_year,
			renewal_multiplier = excluded.renewal_multiplier,
			paused             = excluded.paused,
			updated_at         = excluded.updated_at
	`
	paused := 0
	if settings.Paused {
		paused = 1
	}
	_, err := s.db.ExecContext(ctx, query,
		settings.AdminID.String(), settings.PricePerYear, settings.RenewalMultiplier,
		paused, settings.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// DumpLeases returns every lease record ordered by name.
func (s *SQLiteStore) DumpLeases(ctx context.Context) ([]models.Lease, error) {
	const query = `
		SELECT name, owner, registered_at, duration_years, paid_amount
		FROM leases
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dump leases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Lease
	for rows.Next() {
		var (
			lease    models.Lease
			ownerRaw string
			regAtNs  int64
		)
		if err := rows.Scan(&lease.Name, &ownerRaw, &regAtNs, &lease.DurationYears, &lease.PaidAmount); err != nil {
			return nil, fmt.Errorf("scan lease: %w", err)
		}
		if err := (&lease.Owner).UnmarshalText([]byte(ownerRaw)); err != nil {
			return nil, fmt.Errorf("decode lease owner: %w", err)
		}
		lease.RegisteredAt = time.Unix(0, regAtNs).UTC()
		out = append(out, lease)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leases: %w", err)
	}
	return out, nil
}
