package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"namelease/internal/platform/middleware"
	"namelease/internal/registrar/models"
	id "namelease/pkg/domain"
)

// Service defines the interface for registrar operations.
type Service interface {
	Claim(ctx context.Context, name string, years int, payment int64) (*models.Lease, error)
	Renew(ctx context.Context, name string, additionalYears int, payment int64) (*models.Lease, error)
	Info(ctx context.Context, name string) (*models.Lease, error)
	Owner(ctx context.Context, name string) (id.AccountID, error)
	SetPricePerYear(ctx context.Context, price int64) (*models.Settings, error)
	SetRenewalMultiplier(ctx context.Context, multiplier int64) (*models.Settings, error)
	Pause(ctx context.Context) (*models.Settings, error)
	Unpause(ctx context.Context) (*models.Settings, error)
	Withdraw(ctx context.Context) (int64, error)
}

// Depositor accepts funds into custody without touching lease state.
// A deposit is a ledger entry and nothing more; the registrar never
// reads deposited balances when pricing a claim or renewal.
type Depositor interface {
	Deposit(ctx context.Context, from id.AccountID, amount int64) error
}

// Snapshotter exports the full registry state to archival storage and
// returns the storage key it wrote.
type Snapshotter interface {
	Export(ctx context.Context) (string, error)
}

// Handler wires registrar endpoints to the registrar service.
type Handler struct {
	service     Service
	depositor   Depositor
	snapshotter Snapshotter
	validator   middleware.TokenValidator
	logger      *slog.Logger
}

// New constructs a registrar handler with its dependencies.
func New(
	service Service,
	depositor Depositor,
	snapshotter Snapshotter,
	validator middleware.TokenValidator,
	logger *slog.Logger) *Handler {
	return &Handler{
		service:     service,
		depositor:   depositor,
		snapshotter: snapshotter,
		validator:   validator,
		logger:      logger,
	}
}

// Register mounts registrar endpoints on the router. Reads are public;
// everything that moves money or mutates state requires a bearer token.
func (h *Handler) Register(r chi.Router) {
	requireAuth := middleware.RequireAuth(h.validator, h.logger)

	r.Route("/domains/{name}", func(r chi.Router) {
		r.Get("/", h.handleInfo)
		r.Get("/owner", h.handleOwner)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/claim", h.handleClaim)
			r.Post("/renew", h.handleRenew)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/price", h.handleSetPrice)
		r.Post("/multiplier", h.handleSetMultiplier)
		r.Post("/pause", h.handlePause)
		r.Post("/unpause", h.handleUnpause)
		r.Post("/withdraw", h.handleWithdraw)
		r.Post("/snapshot", h.handleSnapshot)
	})

	r.With(requireAuth).Post("/deposit", h.handleDeposit)
}

// elapsedMS reports handler latency for log lines.
func elapsedMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

// leaseName pulls the {name} route parameter.
func leaseName(r *http.Request) string {
	return chi.URLParam(r, "name")
}
