package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "namelease/pkg/domain"
	"namelease/pkg/platform/tx"
)

// PostgresStore persists the ledger in PostgreSQL: an append-only journal
// plus a single derived balance row, always written in one transaction.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ledger store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the schema when it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS ledger_entries (
			id      UUID PRIMARY KEY,
			kind    TEXT NOT NULL,
			account UUID NOT NULL,
			amount  BIGINT NOT NULL,
			at      TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS ledger_balance (
			singleton SMALLINT PRIMARY KEY DEFAULT 1 CHECK (singleton = 1),
			balance   BIGINT NOT NULL
		);
		INSERT INTO ledger_balance (singleton, balance) VALUES (1, 0)
		ON CONFLICT (singleton) DO NOTHING;
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate ledger schema: %w", err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// exec prefers an ambient transaction from the context so multi-statement
// writes stay atomic.
func (s *PostgresStore) exec(ctx context.Context) execer {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

// Append journals an entry and bumps the balance in one transaction.
func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	return tx.Run(ctx, s.db, func(txCtx context.Context) error {
		if err := s.insertEntry(txCtx, entry); err != nil {
			return err
		}
		if _, err := s.exec(txCtx).ExecContext(txCtx,
			`UPDATE ledger_balance SET balance = balance + $1 WHERE singleton = 1`,
			entry.Amount,
		); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		return nil
	})
}

// PayoutAll zeroes the balance, journals the payout, and returns the amount
// paid. The read locks the row so a concurrent credit can never be lost
// between the read and the write.
func (s *PostgresStore) PayoutAll(ctx context.Context, to id.AccountID, payoutID uuid.UUID, at time.Time) (int64, error) {
	var amount int64
	err := tx.Run(ctx, s.db, func(txCtx context.Context) error {
		t, _ := tx.From(txCtx)
		err := t.QueryRowContext(txCtx,
			`SELECT balance FROM ledger_balance WHERE singleton = 1 FOR UPDATE`,
		).Scan(&amount)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}
		if amount == 0 {
			return nil
		}
		if _, err := t.ExecContext(txCtx,
			`UPDATE ledger_balance SET balance = 0 WHERE singleton = 1`,
		); err != nil {
			return fmt.Errorf("zero balance: %w", err)
		}
		return s.insertEntry(txCtx, Entry{
			ID:      payoutID,
			Kind:    KindPayout,
			Account: to,
			Amount:  -amount,
			At:      at,
		})
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}

// Balance returns the current balance.
func (s *PostgresStore) Balance(ctx context.Context) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx,
		`SELECT balance FROM ledger_balance WHERE singleton = 1`,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return balance, nil
}

func (s *PostgresStore) insertEntry(ctx context.Context, entry Entry) error {
	_, err := s.exec(ctx).ExecContext(ctx,
		`INSERT INTO ledger_entries (id, kind, account, amount, at) VALUES ($1, $2, $3, $4, $5)`,
		entry.ID.String(), string(entry.Kind), entry.Account.String(), entry.Amount, entry.At.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}
