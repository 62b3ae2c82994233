package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"namelease/internal/ledger"
	"namelease/internal/notify"
	"namelease/internal/registrar/models"
	"namelease/internal/registrar/store"
	id "namelease/pkg/domain"
	dErrors "namelease/pkg/domain-errors"
	"namelease/pkg/requestcontext"
)

// =============================================================================
// Registrar Service Test Suite
// =============================================================================
// Justification for unit tests: the service carries the whole leasing policy:
// precondition ordering, expiry boundaries, pause and admin gating, and the
// cumulative duration/payment arithmetic. These need precise clock control
// that end-to-end tests cannot provide.

type recordingNotifier struct {
	events []notify.Event
}

func (n *recordingNotifier) Emit(_ context.Context, event notify.Event) {
	n.events = append(n.events, event)
}

func (n *recordingNotifier) types() []notify.EventType {
	out := make([]notify.EventType, 0, len(n.events))
	for _, event := range n.events {
		out = append(out, event.Type)
	}
	return out
}

type RegistrarServiceSuite struct {
	suite.Suite
	store       *store.MemoryStore
	ledgerStore *ledger.MemoryStore
	ledger      *ledger.Service
	notifier    *recordingNotifier
	service     *Service

	admin id.AccountID
	alice id.AccountID
	bob   id.AccountID
	epoch time.Time
}

func TestRegistrarServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistrarServiceSuite))
}

func (s *RegistrarServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.store = store.NewMemory()
	s.ledgerStore = ledger.NewMemory()
	s.ledger = ledger.New(s.ledgerStore, ledger.WithLogger(logger))
	s.notifier = &recordingNotifier{}
	s.service = New(s.store, s.store, s.ledger,
		WithLogger(logger),
		WithNotifier(s.notifier),
	)

	s.admin = id.NewAccountID()
	s.alice = id.NewAccountID()
	s.bob = id.NewAccountID()
	s.epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// price 100/year, renewal multiplier 2
	s.Require().NoError(s.service.Seed(s.ctx(s.admin, s.epoch), s.admin, 100, 2))
	s.notifier.events = nil
}

// ctx builds a request context with a verified caller and a pinned clock.
func (s *RegistrarServiceSuite) ctx(caller id.AccountID, at time.Time) context.Context {
	ctx := requestcontext.WithCallerID(context.Background(), caller)
	return requestcontext.WithTime(ctx, at)
}

func (s *RegistrarServiceSuite) anonCtx(at time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), at)
}

func (s *RegistrarServiceSuite) balance() int64 {
	balance, err := s.ledger.Balance(context.Background())
	s.Require().NoError(err)
	return balance
}

// =============================================================================
// Seeding
// =============================================================================

func (s *RegistrarServiceSuite) TestSeed() {
	s.Run("second seed keeps persisted settings", func() {
		err := s.service.Seed(s.ctx(s.admin, s.epoch), id.NewAccountID(), 999, 7)
		s.NoError(err)

		cfg, err := s.store.LoadSettings(context.Background())
		s.Require().NoError(err)
		s.Equal(s.admin, cfg.AdminID)
		s.Equal(int64(100), cfg.PricePerYear)
		s.Equal(int64(2), cfg.RenewalMultiplier)
	})

	s.Run("nil admin rejected", func() {
		fresh := New(store.NewMemory(), store.NewMemory(), s.ledger)
		err := fresh.Seed(s.ctx(s.admin, s.epoch), id.NilAccount, 100, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

// =============================================================================
// Claim
// =============================================================================

func (s *RegistrarServiceSuite) TestClaim() {
	s.Run("new name succeeds with exact payment", func() {
		lease, err := s.service.Claim(s.ctx(s.alice, s.epoch), "example.test", 2, 200)
		s.Require().NoError(err)
		s.Equal(s.alice, lease.Owner)
		s.Equal(2, lease.DurationYears)
		s.Equal(int64(200), lease.PaidAmount)
		s.True(lease.RegisteredAt.Equal(s.epoch))

		s.Require().Len(s.notifier.events, 1)
		event := s.notifier.events[0]
		s.Equal(notify.EventDomainRegistered, event.Type)
		s.Equal("example.test", event.Name)
		s.Equal(s.alice, event.Caller)
		s.Equal(int64(200), event.Amount)
		s.Equal(2, event.Years)

		s.Equal(int64(200), s.balance())
	})

	s.Run("overpayment is captured in full", func() {
		lease, err := s.service.Claim(s.ctx(s.alice, s.epoch), "generous.test", 1, 500)
		s.Require().NoError(err)
		s.Equal(int64(500), lease.PaidAmount)
	})

	s.Run("payment one unit short fails and mutates nothing", func() {
		before := s.balance()
		events := len(s.notifier.events)

		_, err := s.service.Claim(s.ctx(s.bob, s.epoch), "short.test", 2, 199)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientPayment))

		_, err = s.service.Info(s.ctx(s.bob, s.epoch), "short.test")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal(before, s.balance())
		s.Len(s.notifier.events, events)
	})

	s.Run("anonymous caller rejected", func() {
		_, err := s.service.Claim(s.anonCtx(s.epoch), "anon.test", 1, 100)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("negative payment rejected", func() {
		_, err := s.service.Claim(s.ctx(s.alice, s.epoch), "negative.test", 1, -1)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("empty name rejected", func() {
		_, err := s.service.Claim(s.ctx(s.alice, s.epoch), "", 1, 100)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *RegistrarServiceSuite) TestClaimTermBounds() {
	for _, years := range []int{0, 11, -3} {
		_, err := s.service.Claim(s.ctx(s.alice, s.epoch), "bounds.test", years, 10000)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDuration), "years=%d", years)
	}

	one, err := s.service.Claim(s.ctx(s.alice, s.epoch), "one.test", 1, 100)
	s.Require().NoError(err)
	s.Equal(1, one.DurationYears)

	ten, err := s.service.Claim(s.ctx(s.alice, s.epoch), "ten.test", 10, 1000)
	s.Require().NoError(err)
	s.Equal(10, ten.DurationYears)
}

func (s *RegistrarServiceSuite) TestClaimAvailability() {
	_, err := s.service.Claim(s.ctx(s.alice, s.epoch), "held.test", 2, 200)
	s.Require().NoError(err)

	s.Run("active lease rejects a second claim", func() {
		_, err := s.service.Claim(s.ctx(s.bob, s.epoch.Add(365*24*time.Hour)), "held.test", 1, 100)
		s.True(dErrors.HasCode(err, dErrors.CodeLeaseActive))

		owner, err := s.service.Owner(s.anonCtx(s.epoch), "held.test")
		s.Require().NoError(err)
		s.Equal(s.alice, owner)
	})

	s.Run("availability is checked before term bounds", func() {
		_, err := s.service.Claim(s.ctx(s.bob, s.epoch), "held.test", 0, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeLeaseActive))
	})

	s.Run("exact expiry instant is still active", func() {
		expiresAt := s.epoch.Add(2 * 365 * 24 * time.Hour)
		_, err := s.service.Claim(s.ctx(s.bob, expiresAt), "held.test", 1, 100)
		s.True(dErrors.HasCode(err, dErrors.CodeLeaseActive))
	})

	s.Run("reclaim after expiry fully resets the record", func() {
		afterExpiry := s.epoch.Add(2*365*24*time.Hour + time.Hour)
		lease, err := s.service.Claim(s.ctx(s.bob, afterExpiry), "held.test", 1, 130)
		s.Require().NoError(err)
		s.Equal(s.bob, lease.Owner)
		s.Equal(1, lease.DurationYears, "duration resets, never accumulates across owners")
		s.Equal(int64(130), lease.PaidAmount, "payment overwrites, never sums")
		s.True(lease.RegisteredAt.Equal(afterExpiry))
	})
}

func (s *RegistrarServiceSuite) TestClaimFreeWhenPriceZero() {
	_, err := s.service.SetPricePerYear(s.ctx(s.admin, s.epoch), 0)
	s.Require().NoError(err)

	before := s.balance()
	lease, err := s.service.Claim(s.ctx(s.alice, s.epoch), "free.test", 3, 0)
	s.Require().NoError(err)
	s.Equal(int64(0), lease.PaidAmount)
	s.Equal(before, s.balance(), "zero-value claims leave the ledger untouched")
}

// =============================================================================
// Renew
// =============================================================================

func (s *RegistrarServiceSuite) TestRenew() {
	_, err := s.service.Claim(s.ctx(s.alice, s.epoch), "renewable.test", 2, 200)
	s.Require().NoError(err)

	s.Run("owner extends an active lease", func() {
		at := s.epoch.Add(24 * time.Hour)
		lease, err := s.service.Renew(s.ctx(s.alice, at), "renewable.test", 1, 200)
		s.Require().NoError(err)
		s.Equal(3, lease.DurationYears)
		s.Equal(int64(400), lease.PaidAmount)
		s.True(lease.RegisteredAt.Equal(s.epoch), "renewal never touches RegisteredAt")

		last := s.notifier.events[len(s.notifier.events)-1]
		s.Equal(notify.EventDomainRenewed, last.Type)
		s.Equal(1, last.Years)
		s.Equal(int64(200), last.Amount)
	})

	s.Run("payment below multiplied price fails", func() {
		_, err := s.service.Renew(s.ctx(s.alice, s.epoch), "renewable.test", 1, 199)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientPayment))
	})

	s.Run("non-owner cannot renew", func() {
		_, err := s.service.Renew(s.ctx(s.bob, s.epoch), "renewable.test", 1, 10000)
		s.True(dErrors.HasCode(err, dErrors.CodeNotOwner))
	})

	s.Run("term bounds are checked before ownership", func() {
		_, err := s.service.Renew(s.ctx(s.bob, s.epoch), "renewable.test", 0, 10000)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidDuration))
	})

	s.Run("never-claimed name fails not_owner", func() {
		_, err := s.service.Renew(s.ctx(s.alice, s.epoch), "unclaimed.test", 1, 10000)
		s.True(dErrors.HasCode(err, dErrors.CodeNotOwner))
	})
}

func (s *RegistrarServiceSuite) TestRenewAfterLapse() {
	// Claimed for 2 years at T; renewed 3 years after T, well past expiry.
	_, err := s.service.Claim(s.ctx(s.alice, s.epoch), "lapsed.test", 2, 200)
	s.Require().NoError(err)

	at := s.epoch.Add(3 * 365 * 24 * time.Hour)
	lease, err := s.service.Renew(s.ctx(s.alice, at), "lapsed.test", 1, 200)
	s.Require().NoError(err)
	s.Equal(s.alice, lease.Owner)
	s.Equal(3, lease.DurationYears)
	s.True(lease.RegisteredAt.Equal(s.epoch))
}

func (s *RegistrarServiceSuite) TestRenewAccumulatesPastTen() {
	_, err := s.service.Claim(s.ctx(s.alice, s.epoch), "decade.test", 10, 1000)
	s.Require().NoError(err)

	lease, err := s.service.Renew(s.ctx(s.alice, s.epoch), "decade.test", 10, 2000)
	s.Require().NoError(err)
	s.Equal(20, lease.DurationYears, "per-operation cap does not bound the cumulative term")
}

// =============================================================================
// Lookups
// =============================================================================

func (s *RegistrarServiceSuite) TestLookups() {
	_, err := s.service.Claim(s.ctx(s.alice, s.epoch), "lookup.test", 1, 100)
	s.Require().NoError(err)

	s.Run("info returns the stored record", func() {
		lease, err := s.service.Info(s.anonCtx(s.epoch), "lookup.test")
		s.Require().NoError(err)
		s.Equal(s.alice, lease.Owner)
		s.Equal(1, lease.DurationYears)
	})

	s.Run("owner returns the recorded leaseholder", func() {
		owner, err := s.service.Owner(s.anonCtx(s.epoch), "lookup.test")
		s.Require().NoError(err)
		s.Equal(s.alice, owner)
	})

	s.Run("unknown name is not found", func() {
		_, err := s.service.Info(s.anonCtx(s.epoch), "missing.test")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		_, err = s.service.Owner(s.anonCtx(s.epoch), "missing.test")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("lapsed lease still reports its last owner", func() {
		owner, err := s.service.Owner(s.anonCtx(s.epoch.Add(5*365*24*time.Hour)), "lookup.test")
		s.Require().NoError(err)
		s.Equal(s.alice, owner)
	})
}

// =============================================================================
// Pause gate
// =============================================================================

func (s *RegistrarServiceSuite) TestPauseGate() {
	_, err := s.service.Claim(s.ctx(s.alice, s.epoch), "frozen.test", 5, 500)
	s.Require().NoError(err)

	_, err = s.service.Pause(s.ctx(s.admin, s.epoch))
	s.Require().NoError(err)

	s.Run("claims are rejected while paused", func() {
		_, err := s.service.Claim(s.ctx(s.bob, s.epoch), "other.test", 1, 100)
		s.True(dErrors.HasCode(err, dErrors.CodeRegistryPaused))
	})

	s.Run("renewals are rejected while paused", func() {
		_, err := s.service.Renew(s.ctx(s.alice, s.epoch), "frozen.test", 1, 200)
		s.True(dErrors.HasCode(err, dErrors.CodeRegistryPaused))
	})

	s.Run("reads keep working while paused", func() {
		owner, err := s.service.Owner(s.anonCtx(s.epoch), "frozen.test")
		s.Require().NoError(err)
		s.Equal(s.alice, owner)

		lease, err := s.service.Info(s.anonCtx(s.epoch), "frozen.test")
		s.Require().NoError(err)
		s.Equal(5, lease.DurationYears)
	})

	s.Run("admin operations bypass the pause gate", func() {
		_, err := s.service.SetPricePerYear(s.ctx(s.admin, s.epoch), 250)
		s.NoError(err)
	})

	s.Run("unpause reopens mutations", func() {
		_, err := s.service.Unpause(s.ctx(s.admin, s.epoch))
		s.Require().NoError(err)

		_, err = s.service.Claim(s.ctx(s.bob, s.epoch), "other.test", 1, 250)
		s.NoError(err)
	})
}

func (s *RegistrarServiceSuite) TestPauseIsUnguarded() {
	for range 2 {
		cfg, err := s.service.Pause(s.ctx(s.admin, s.epoch))
		s.Require().NoError(err)
		s.True(cfg.Paused)
	}
	s.Equal([]notify.EventType{notify.EventPaused, notify.EventPaused}, s.notifier.types(),
		"double pause succeeds and re-emits")

	for range 2 {
		cfg, err := s.service.Unpause(s.ctx(s.admin, s.epoch))
		s.Require().NoError(err)
		s.False(cfg.Paused)
	}
	s.Equal(notify.EventUnpaused, s.notifier.events[len(s.notifier.events)-1].Type)
}

// =============================================================================
// Admin surface
// =============================================================================

func (s *RegistrarServiceSuite) TestAdminGate() {
	s.Run("non-admin cannot set price", func() {
		_, err := s.service.SetPricePerYear(s.ctx(s.alice, s.epoch), 999)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		cfg, loadErr := s.store.LoadSettings(context.Background())
		s.Require().NoError(loadErr)
		s.Equal(int64(100), cfg.PricePerYear, "settings unchanged on rejection")
	})

	s.Run("non-admin cannot pause or withdraw", func() {
		_, err := s.service.Pause(s.ctx(s.bob, s.epoch))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		_, err = s.service.Withdraw(s.ctx(s.bob, s.epoch))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("anonymous caller rejected", func() {
		_, err := s.service.SetPricePerYear(s.anonCtx(s.epoch), 100)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("admin updates price and claims reprice", func() {
		cfg, err := s.service.SetPricePerYear(s.ctx(s.admin, s.epoch), 250)
		s.Require().NoError(err)
		s.Equal(int64(250), cfg.PricePerYear)

		last := s.notifier.events[len(s.notifier.events)-1]
		s.Equal(notify.EventPriceChanged, last.Type)
		s.Equal(int64(250), last.Price)

		_, err = s.service.Claim(s.ctx(s.alice, s.epoch), "repriced.test", 1, 100)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientPayment))
	})

	s.Run("admin updates multiplier and renewals reprice", func() {
		cfg, err := s.service.SetRenewalMultiplier(s.ctx(s.admin, s.epoch), 3)
		s.Require().NoError(err)
		s.Equal(int64(3), cfg.RenewalMultiplier)

		last := s.notifier.events[len(s.notifier.events)-1]
		s.Equal(notify.EventMultiplierChanged, last.Type)
		s.Equal(int64(3), last.Multiplier)
	})

	s.Run("negative price rejected", func() {
		_, err := s.service.SetPricePerYear(s.ctx(s.admin, s.epoch), -1)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("multiplier below one rejected", func() {
		_, err := s.service.SetRenewalMultiplier(s.ctx(s.admin, s.epoch), 0)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *RegistrarServiceSuite) TestWithdraw() {
	_, err := s.service.Claim(s.ctx(s.alice, s.epoch), "paid1.test", 1, 100)
	s.Require().NoError(err)
	_, err = s.service.Claim(s.ctx(s.bob, s.epoch), "paid2.test", 2, 200)
	s.Require().NoError(err)

	events := len(s.notifier.events)

	amount, err := s.service.Withdraw(s.ctx(s.admin, s.epoch))
	s.Require().NoError(err)
	s.Equal(int64(300), amount)
	s.Equal(int64(0), s.balance())
	s.Len(s.notifier.events, events, "withdraw emits no event: the six types are exhaustive")

	s.Run("empty balance withdraws zero", func() {
		amount, err := s.service.Withdraw(s.ctx(s.admin, s.epoch))
		s.Require().NoError(err)
		s.Equal(int64(0), amount)
	})
}

// =============================================================================
// Notification ordering
// =============================================================================

func (s *RegistrarServiceSuite) TestEventsFollowMutationOrder() {
	ctx := s.ctx(s.alice, s.epoch)
	_, err := s.service.Claim(ctx, "ordered.test", 1, 100)
	s.Require().NoError(err)
	_, err = s.service.Renew(ctx, "ordered.test", 1, 200)
	s.Require().NoError(err)

	adminCtx := s.ctx(s.admin, s.epoch)
	_, err = s.service.SetPricePerYear(adminCtx, 150)
	s.Require().NoError(err)
	_, err = s.service.Pause(adminCtx)
	s.Require().NoError(err)
	_, err = s.service.Unpause(adminCtx)
	s.Require().NoError(err)

	s.Equal([]notify.EventType{
		notify.EventDomainRegistered,
		notify.EventDomainRenewed,
		notify.EventPriceChanged,
		notify.EventPaused,
		notify.EventUnpaused,
	}, s.notifier.types())
}

// =============================================================================
// Expiry arithmetic
// =============================================================================

func (s *RegistrarServiceSuite) TestExpiryUsesFixedYear() {
	lease, err := s.service.Claim(s.ctx(s.alice, s.epoch), "fixed.test", 1, 100)
	s.Require().NoError(err)

	// Expiry lands exactly 365 days out regardless of the calendar; leap
	// days are deliberately ignored.
	s.True(lease.ExpiresAt().Equal(s.epoch.Add(models.LeaseYear)))
	s.True(lease.Expired(s.epoch.Add(models.LeaseYear + time.Second)))
	s.False(lease.Expired(s.epoch.Add(models.LeaseYear)))
}
