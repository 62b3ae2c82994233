// Package service implements the leasing registry: claims, renewals, the
// read accessors, and the admin surface that prices and pauses the
// registry. All policy decisions live here; stores persist, the ledger
// accounts, the notifier tells the outside world.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"namelease/internal/notify"
	"namelease/internal/registrar/metrics"
	"namelease/internal/registrar/models"
	id "namelease/pkg/domain"
	dErrors "namelease/pkg/domain-errors"
	"namelease/pkg/platform/sentinel"
	"namelease/pkg/requestcontext"
)

var tracer = otel.Tracer("namelease/internal/registrar/service")

type LeaseStore interface {
	Find(ctx context.Context, name string) (*models.Lease, error)
	Put(ctx context.Context, lease *models.Lease) error
}

type SettingsStore interface {
	LoadSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, settings *models.Settings) error
}

type Ledger interface {
	Capture(ctx context.Context, from id.AccountID, amount int64) error
	Payout(ctx context.Context, to id.AccountID) (int64, error)
}

type Notifier interface {
	Emit(ctx context.Context, event notify.Event)
}

// Service orchestrates lease and settings mutations.
//
// Every mutation runs under one mutex: a call fully completes, including
// the notification enqueue, before the next begins. Preconditions are
// checked in full before any write, so a rejection leaves every
// collaborator untouched.
type Service struct {
	leases   LeaseStore
	settings SettingsStore
	ledger   Ledger
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu sync.Mutex
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(leases LeaseStore, settings SettingsStore, ledger Ledger, opts ...Option) *Service {
	s := &Service{leases: leases, settings: settings, ledger: ledger, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed installs registry settings on first start. An already seeded
// registry keeps its persisted settings: config changes after first boot
// never override admin mutations.
func (s *Service) Seed(ctx context.Context, adminID id.AccountID, pricePerYear, renewalMultiplier int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.settings.LoadSettings(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry settings")
	}

	seeded, err := models.NewSettings(adminID, pricePerYear, renewalMultiplier, requestcontext.Now(ctx))
	if err != nil {
		return err
	}
	if err := s.settings.SaveSettings(ctx, seeded); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed registry settings")
	}
	s.logger.InfoContext(ctx, "registry settings seeded",
		"admin_id", adminID,
		"price_per_year", pricePerYear,
		"renewal_multiplier", renewalMultiplier,
	)
	return nil
}

// Claim takes a name for the caller. Preconditions run in order: pause
// gate, availability, term bounds, payment. On success the record is
// fully overwritten, the payment captured, and DomainRegistered emitted.
func (s *Service) Claim(ctx context.Context, name string, years int, payment int64) (lease *models.Lease, err error) {
	ctx, span := tracer.Start(ctx, "registrar.Claim", trace.WithAttributes(
		attribute.String("lease.name", name),
		attribute.Int("lease.years", years),
	))
	defer func() { endSpan(span, err) }()
	start := time.Now()
	defer func() {
		s.metrics.ObserveMutation("claim", start)
		s.metrics.IncrementClaim(outcome(err))
	}()

	if err = models.ValidateName(name); err != nil {
		return nil, err
	}
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if payment < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "payment cannot be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Paused {
		return nil, dErrors.New(dErrors.CodeRegistryPaused, "registry is paused")
	}

	now := requestcontext.Now(ctx)
	lease, err = s.findLease(ctx, name)
	if err != nil {
		return nil, err
	}
	if lease != nil && !lease.Available(now) {
		return nil, dErrors.New(dErrors.CodeLeaseActive, "name is held by an active lease")
	}
	if !models.ValidTerm(years) {
		return nil, dErrors.Newf(dErrors.CodeInvalidDuration, "term must be between %d and %d years", models.MinTermYears, models.MaxTermYears)
	}
	if price := cfg.ClaimPrice(years); payment < price {
		return nil, dErrors.Newf(dErrors.CodeInsufficientPayment, "claiming %d years requires %d, got %d", years, price, payment)
	}

	if lease == nil {
		lease, err = models.NewLease(name, caller, years, payment, now)
		if err != nil {
			return nil, err
		}
	} else {
		lease.ApplyClaim(caller, years, payment, now)
	}
	if err = s.leases.Put(ctx, lease); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store lease")
	}
	s.capture(ctx, caller, payment)
	s.emit(ctx, notify.Event{
		Type:   notify.EventDomainRegistered,
		Name:   name,
		Caller: caller,
		Amount: payment,
		Years:  years,
	})
	s.logger.InfoContext(ctx, "domain registered",
		"request_id", requestcontext.RequestID(ctx),
		"name", name,
		"owner", caller,
		"years", years,
		"payment", payment,
	)
	return lease, nil
}

// Renew extends the caller's lease. Preconditions run in order: pause
// gate, term bounds, ownership, payment. Ownership does not require the
// lease to be unexpired: a lapsed owner may renew until someone reclaims.
func (s *Service) Renew(ctx context.Context, name string, additionalYears int, payment int64) (lease *models.Lease, err error) {
	ctx, span := tracer.Start(ctx, "registrar.Renew", trace.WithAttributes(
		attribute.String("lease.name", name),
		attribute.Int("lease.years", additionalYears),
	))
	defer func() { endSpan(span, err) }()
	start := time.Now()
	defer func() {
		s.metrics.ObserveMutation("renew", start)
		s.metrics.IncrementRenew(outcome(err))
	}()

	if err = models.ValidateName(name); err != nil {
		return nil, err
	}
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if payment < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "payment cannot be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Paused {
		return nil, dErrors.New(dErrors.CodeRegistryPaused, "registry is paused")
	}
	if !models.ValidTerm(additionalYears) {
		return nil, dErrors.Newf(dErrors.CodeInvalidDuration, "term must be between %d and %d years", models.MinTermYears, models.MaxTermYears)
	}

	lease, err = s.findLease(ctx, name)
	if err != nil {
		return nil, err
	}
	if lease == nil || !lease.OwnedBy(caller) {
		return nil, dErrors.New(dErrors.CodeNotOwner, "caller does not hold this name")
	}
	if price := cfg.RenewalPrice(additionalYears); payment < price {
		return nil, dErrors.Newf(dErrors.CodeInsufficientPayment, "renewing %d years requires %d, got %d", additionalYears, price, payment)
	}

	lease.ApplyRenewal(additionalYears, payment)
	if err = s.leases.Put(ctx, lease); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store lease")
	}
	s.capture(ctx, caller, payment)
	s.emit(ctx, notify.Event{
		Type:   notify.EventDomainRenewed,
		Name:   name,
		Caller: caller,
		Amount: payment,
		Years:  additionalYears,
	})
	s.logger.InfoContext(ctx, "domain renewed",
		"request_id", requestcontext.RequestID(ctx),
		"name", name,
		"owner", caller,
		"additional_years", additionalYears,
		"payment", payment,
	)
	return lease, nil
}

// Info returns the lease record for a name. Reads are never gated: they
// work while paused and report lapsed leases as stored, expiry math is the
// caller's to apply.
func (s *Service) Info(ctx context.Context, name string) (*models.Lease, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveLookup(start) }()
	return s.lookup(ctx, name)
}

// Owner returns the recorded leaseholder for a name. A lapsed owner is
// still the recorded owner until someone reclaims.
func (s *Service) Owner(ctx context.Context, name string) (id.AccountID, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveLookup(start) }()

	lease, err := s.lookup(ctx, name)
	if err != nil {
		return id.NilAccount, err
	}
	return lease.Owner, nil
}

// SetPricePerYear overwrites the per-year claim price.
func (s *Service) SetPricePerYear(ctx context.Context, price int64) (cfg *models.Settings, err error) {
	ctx, span := tracer.Start(ctx, "registrar.SetPricePerYear")
	defer func() { endSpan(span, err) }()
	start := time.Now()
	defer func() { s.metrics.ObserveMutation("set_price", start) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, _, err = s.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if price < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "price cannot be negative")
	}

	cfg.ApplyPrice(price, requestcontext.Now(ctx))
	if err = s.settings.SaveSettings(ctx, cfg); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store registry settings")
	}
	s.metrics.IncrementAdminAction("set_price")
	s.emit(ctx, notify.Event{Type: notify.EventPriceChanged, Price: price})
	s.logger.InfoContext(ctx, "price per year updated",
		"request_id", requestcontext.RequestID(ctx),
		"price_per_year", price,
	)
	return cfg, nil
}

// SetRenewalMultiplier overwrites the renewal price multiplier.
func (s *Service) SetRenewalMultiplier(ctx context.Context, multiplier int64) (cfg *models.Settings, err error) {
	ctx, span := tracer.Start(ctx, "registrar.SetRenewalMultiplier")
	defer func() { endSpan(span, err) }()
	start := time.Now()
	defer func() { s.metrics.ObserveMutation("set_multiplier", start) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, _, err = s.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if multiplier < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "renewal multiplier must be at least 1")
	}

	cfg.ApplyMultiplier(multiplier, requestcontext.Now(ctx))
	if err = s.settings.SaveSettings(ctx, cfg); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store registry settings")
	}
	s.metrics.IncrementAdminAction("set_multiplier")
	s.emit(ctx, notify.Event{Type: notify.EventMultiplierChanged, Multiplier: multiplier})
	s.logger.InfoContext(ctx, "renewal multiplier updated",
		"request_id", requestcontext.RequestID(ctx),
		"renewal_multiplier", multiplier,
	)
	return cfg, nil
}

// Pause stops claims and renewals. Reads and admin operations keep
// working. Pausing an already paused registry succeeds and re-emits.
func (s *Service) Pause(ctx context.Context) (*models.Settings, error) {
	return s.setPaused(ctx, true)
}

// Unpause reopens claims and renewals. Unpausing an already open registry
// succeeds and re-emits.
func (s *Service) Unpause(ctx context.Context) (*models.Settings, error) {
	return s.setPaused(ctx, false)
}

func (s *Service) setPaused(ctx context.Context, paused bool) (cfg *models.Settings, err error) {
	op, eventType := "pause", notify.EventPaused
	if !paused {
		op, eventType = "unpause", notify.EventUnpaused
	}
	ctx, span := tracer.Start(ctx, "registrar."+op)
	defer func() { endSpan(span, err) }()
	start := time.Now()
	defer func() { s.metrics.ObserveMutation(op, start) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, _, err = s.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	cfg.ApplyPaused(paused, requestcontext.Now(ctx))
	if err = s.settings.SaveSettings(ctx, cfg); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store registry settings")
	}
	s.metrics.IncrementAdminAction(op)
	s.emit(ctx, notify.Event{Type: eventType})
	s.logger.InfoContext(ctx, "registry pause flag set",
		"request_id", requestcontext.RequestID(ctx),
		"paused", paused,
	)
	return cfg, nil
}

// Withdraw pays the entire custodial balance out to the admin account and
// returns the amount moved. A zero balance withdraws zero. No notification
// is emitted: the six event types are exhaustive.
func (s *Service) Withdraw(ctx context.Context) (amount int64, err error) {
	ctx, span := tracer.Start(ctx, "registrar.Withdraw")
	defer func() { endSpan(span, err) }()
	start := time.Now()
	defer func() { s.metrics.ObserveMutation("withdraw", start) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, _, err := s.requireAdmin(ctx)
	if err != nil {
		return 0, err
	}

	amount, err = s.ledger.Payout(ctx, cfg.AdminID)
	if err != nil {
		return 0, err
	}
	s.metrics.IncrementAdminAction("withdraw")
	s.logger.InfoContext(ctx, "custodial balance withdrawn",
		"request_id", requestcontext.RequestID(ctx),
		"to", cfg.AdminID,
		"amount", amount,
	)
	return amount, nil
}

func (s *Service) lookup(ctx context.Context, name string) (*models.Lease, error) {
	if err := models.ValidateName(name); err != nil {
		return nil, err
	}
	lease, err := s.leases.Find(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "name has no lease record")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load lease")
	}
	return lease, nil
}

// findLease loads a record for mutation, mapping absence to nil.
func (s *Service) findLease(ctx context.Context, name string) (*models.Lease, error) {
	lease, err := s.leases.Find(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load lease")
	}
	return lease, nil
}

func (s *Service) loadSettings(ctx context.Context) (*models.Settings, error) {
	cfg, err := s.settings.LoadSettings(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInternal, "registry settings are not seeded")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry settings")
	}
	return cfg, nil
}

// requireAdmin loads settings and checks the caller against AdminID.
// Admin operations are never pause gated.
func (s *Service) requireAdmin(ctx context.Context) (*models.Settings, id.AccountID, error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, id.NilAccount, err
	}
	cfg, err := s.loadSettings(ctx)
	if err != nil {
		return nil, id.NilAccount, err
	}
	if !cfg.IsAdmin(caller) {
		return nil, id.NilAccount, dErrors.New(dErrors.CodeUnauthorized, "caller is not the registry admin")
	}
	return cfg, caller, nil
}

// capture records the payment in the custody ledger. The lease record is
// authoritative for paid amounts; a capture failure is logged for
// reconciliation and does not undo the committed lease write.
func (s *Service) capture(ctx context.Context, from id.AccountID, amount int64) {
	if err := s.ledger.Capture(ctx, from, amount); err != nil {
		s.logger.ErrorContext(ctx, "ledger capture failed",
			"request_id", requestcontext.RequestID(ctx),
			"account", from,
			"amount", amount,
			"error", err,
		)
	}
}

func (s *Service) emit(ctx context.Context, event notify.Event) {
	if s.notifier != nil {
		s.notifier.Emit(ctx, event)
	}
}

func requireCaller(ctx context.Context) (id.AccountID, error) {
	caller := requestcontext.CallerID(ctx)
	if caller.IsNil() {
		return id.NilAccount, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	return caller, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(dErrors.CodeOf(err))
}
