package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"namelease/internal/registrar/models"
	id "namelease/pkg/domain"
	"namelease/pkg/platform/sentinel"
)

// PostgresStore persists leases and settings in PostgreSQL. It is the
// production backend: the single-writer discipline lives in the service,
// so plain upserts are enough here.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the schema when it does not exist yet. Call once at
// startup before serving requests.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS leases (
			name           TEXT PRIMARY KEY,
			owner          UUID NOT NULL,
			registered_at  TIMESTAMPTZ NOT NULL,
			duration_years INT NOT NULL,
			paid_amount    BIGINT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS registry_settings (
			singleton          SMALLINT PRIMARY KEY DEFAULT 1 CHECK (singleton = 1),
			admin_id           UUID NOT NULL,
			price_per_year     BIGINT NOT NULL,
			renewal_multiplier BIGINT NOT NULL,
			paused             BOOLEAN NOT NULL,
			updated_at         TIMESTAMPTZ NOT NULL
		);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate lease schema: %w", err)
	}
	return nil
}

// Find retrieves a lease by exact name match.
// Returns sentinel.ErrNotFound if no record exists.
func (s *PostgresStore) Find(ctx context.Context, name string) (*models.Lease, error) {
	const query = `
		SELECT name, owner, registered_at, duration_years, paid_amount
		FROM leases
		WHERE name = $1
	`
	var (
		lease    models.Lease
		ownerRaw string
	)
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&lease.Name, &ownerRaw, &lease.RegisteredAt, &lease.DurationYears, &lease.PaidAmount,
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
	lease.RegisteredAt = lease.RegisteredAt.UTC()
	return &lease, nil
}

// Put upserts the whole lease record.
func (s *PostgresStore) Put(ctx context.Context, lease *models.Lease) error {
	const query = `
		INSERT INTO leases (name, owner, registered_at, duration_years, paid_amount)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			owner          = EXCLUDED.owner,
			registered_at  = EXCLUDED.registered_at,
			duration_years = EXCLUDED.duration_years,
			paid_amount    = EXCLUDED.paid_amount
	`
	_, err := s.db.ExecContext(ctx, query,
		lease.Name, lease.Owner.String(), lease.RegisteredAt.UTC(), lease.DurationYears, lease.PaidAmount,
	)
	if err != nil {
		return fmt.Errorf("put lease: %w", err)
	}
	return nil
}

// LoadSettings retrieves the settings singleton.
// Returns sentinel.ErrNotFound until the registry has been seeded.
func (s *PostgresStore) LoadSettings(ctx context.Context) (*models.Settings, error) {
	const query = `
		SELECT admin_id, price_per_year, renewal_multiplier, paused, updated_at
		FROM registry_settings
		WHERE singleton = 1
	`
	var (
		settings models.Settings
		adminRaw string
	)
	err := s.db.QueryRowContext(ctx, query).Scan(
		&adminRaw, &settings.PricePerYear, &settings.RenewalMultiplier, &settings.Paused, &settings.UpdatedAt,
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
	settings.UpdatedAt = settings.UpdatedAt.UTC()
	return &settings, nil
}

// SaveSettings upserts the settings singleton.
func (s *PostgresStore) SaveSettings(ctx context.Context, settings *models.Settings) error {
	const query = `
		INSERT INTO registry_settings (singleton, admin_id, price_per_year, renewal_multiplier, paused, updated_at)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (singleton) DO UPDATE SET
			admin_id           = EXCLUDED.admin_id,
			price_per_year     = EXCLUDED.price_per_year,
			renewal_multiplier = EXCLUDED.renewal_multiplier,
			paused             = EXCLUDED.paused,
			updated_at         = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		settings.AdminID.String(), settings.PricePerYear, settings.RenewalMultiplier,
		settings.Paused, settings.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// DumpLeases returns every lease record ordered by name.
func (s *PostgresStore) DumpLeases(ctx context.Context) ([]models.Lease, error) {
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
			regAt    time.Time
		)
		if err := rows.Scan(&lease.Name, &ownerRaw, &regAt, &lease.DurationYears, &lease.PaidAmount); err != nil {
			return nil, fmt.Errorf("scan lease: %w", err)
		}
		if err := (&lease.Owner).UnmarshalText([]byte(ownerRaw)); err != nil {
			return nil, fmt.Errorf("decode lease owner: %w", err)
		}
		lease.RegisteredAt = regAt.UTC()
		out = append(out, lease)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leases: %w", err)
	}
	return out, nil
}
