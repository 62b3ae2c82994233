// Package ledger tracks the custodial value the registry holds: payments
// captured by claims and renewals, bare deposits, and admin payouts. The
// journal is the audit trail; the balance is derived bookkeeping.
package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	id "namelease/pkg/domain"
	dErrors "namelease/pkg/domain-errors"
	"namelease/pkg/requestcontext"
)

// Store persists the journal and the derived balance. Append must update
// both atomically; PayoutAll must zero the balance and journal the payout
// in one transaction.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	PayoutAll(ctx context.Context, to id.AccountID, payoutID uuid.UUID, at time.Time) (int64, error)
	Balance(ctx context.Context) (int64, error)
}

// Service is the custody ledger.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capture credits custody with payment taken by a lease mutation.
func (s *Service) Capture(ctx context.Context, from id.AccountID, amount int64) error {
	return s.credit(ctx, KindCapture, from, amount)
}

// Deposit credits custody with value attached to the bare deposit endpoint.
// It deliberately does nothing else: no lease state is read or written.
func (s *Service) Deposit(ctx context.Context, from id.AccountID, amount int64) error {
	return s.credit(ctx, KindDeposit, from, amount)
}

func (s *Service) credit(ctx context.Context, kind Kind, from id.AccountID, amount int64) error {
	if amount < 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "ledger amounts cannot be negative")
	}
	if amount == 0 {
		// Zero-value credits are legal (a zero price makes claims free)
		// but journaling them adds nothing.
		return nil
	}
	entry := Entry{
		ID:      uuid.New(),
		Kind:    kind,
		Account: from,
		Amount:  amount,
		At:      requestcontext.Now(ctx),
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record ledger entry")
	}
	return nil
}

// Payout transfers the entire custodial balance to the given account and
// returns the amount paid. A zero balance pays out zero and is not an error.
func (s *Service) Payout(ctx context.Context, to id.AccountID) (int64, error) {
	amount, err := s.store.PayoutAll(ctx, to, uuid.New(), requestcontext.Now(ctx))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to pay out balance")
	}
	s.logger.InfoContext(ctx, "ledger payout",
		"request_id", requestcontext.RequestID(ctx),
		"to", to,
		"amount", amount,
	)
	return amount, nil
}

// Balance returns the current custodial balance.
func (s *Service) Balance(ctx context.Context) (int64, error) {
	balance, err := s.store.Balance(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read balance")
	}
	return balance, nil
}
