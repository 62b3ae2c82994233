package handler

import (
	"time"

	"namelease/internal/registrar/models"
	id "namelease/pkg/domain"
)

// LeaseResponse is the HTTP response for claim, renew and lookup calls.
// ExpiresAt and Expired are derived at the pinned request time so a
// response is internally consistent even when read near the boundary.
type LeaseResponse struct {
	Name          string       `json:"name"`
	Owner         id.AccountID `json:"owner"`
	RegisteredAt  time.Time    `json:"registered_at"`
	DurationYears int          `json:"duration_years"`
	PaidAmount    int64        `json:"paid_amount"`
	ExpiresAt     time.Time    `json:"expires_at"`
	Expired       bool         `json:"expired"`
}

// FromLease converts a lease record to an HTTP response.
func FromLease(lease *models.Lease, now time.Time) *LeaseResponse {
	return &LeaseResponse{
		Name:          lease.Name,
		Owner:         lease.Owner,
		RegisteredAt:  lease.RegisteredAt,
		DurationYears: lease.DurationYears,
		PaidAmount:    lease.PaidAmount,
		ExpiresAt:     lease.ExpiresAt(),
		Expired:       lease.Expired(now),
	}
}

// OwnerResponse is the HTTP response for GET /domains/{name}/owner.
type OwnerResponse struct {
	Name  string       `json:"name"`
	Owner id.AccountID `json:"owner"`
}

// SettingsResponse is the HTTP response for admin settings mutations.
type SettingsResponse struct {
	PricePerYear      int64     `json:"price_per_year"`
	RenewalMultiplier int64     `json:"renewal_multiplier"`
	Paused            bool      `json:"paused"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// FromSettings converts the settings record to an HTTP response. The admin
// account is deliberately not echoed back.
func FromSettings(cfg *models.Settings) *SettingsResponse {
	return &SettingsResponse{
		PricePerYear:      cfg.PricePerYear,
		RenewalMultiplier: cfg.RenewalMultiplier,
		Paused:            cfg.Paused,
		UpdatedAt:         cfg.UpdatedAt,
	}
}

// WithdrawResponse is the HTTP response for POST /admin/withdraw.
type WithdrawResponse struct {
	Amount int64 `json:"amount"`
}

// SnapshotResponse is the HTTP response for POST /admin/snapshot.
type SnapshotResponse struct {
	Key string `json:"key"`
}
