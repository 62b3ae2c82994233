package models

import (
	"time"

	id "namelease/pkg/domain"
	dErrors "namelease/pkg/domain-errors"
)

// Settings is the registry-wide configuration singleton.
//
// Invariants:
//   - AdminID is non-nil and fixed for the life of the deployment
//   - PricePerYear is non-negative (zero makes claims free, which is legal)
//   - RenewalMultiplier is at least 1
//   - Paused gates claim and renewal only; reads and admin operations
//     always pass
//
// There is exactly one Settings record per registry. It is seeded from
// configuration on first start; afterwards the persisted copy is
// authoritative and only admin operations change it.
type Settings struct {
	AdminID           id.AccountID `json:"admin_id"`
	PricePerYear      int64        `json:"price_per_year"`
	RenewalMultiplier int64        `json:"renewal_multiplier"`
	Paused            bool         `json:"paused"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// NewSettings constructs the seed record for a fresh registry.
func NewSettings(adminID id.AccountID, pricePerYear, renewalMultiplier int64, now time.Time) (*Settings, error) {
	if adminID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "admin account cannot be nil")
	}
	if pricePerYear < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "price per year cannot be negative")
	}
	if renewalMultiplier < 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "renewal multiplier must be at least 1")
	}
	return &Settings{
		AdminID:           adminID,
		PricePerYear:      pricePerYear,
		RenewalMultiplier: renewalMultiplier,
		Paused:            false,
		UpdatedAt:         now,
	}, nil
}

// IsAdmin reports whether caller holds the admin identity.
func (s *Settings) IsAdmin(caller id.AccountID) bool {
	return !caller.IsNil() && caller == s.AdminID
}

// ClaimPrice returns the minimum payment for a claim of the given term.
func (s *Settings) ClaimPrice(years int) int64 {
	return s.PricePerYear * int64(years)
}

// RenewalPrice returns the minimum payment for a renewal of the given term.
// Renewals cost the base price scaled by the multiplier.
func (s *Settings) RenewalPrice(additionalYears int) int64 {
	return s.PricePerYear * int64(additionalYears) * s.RenewalMultiplier
}

// ApplyPrice overwrites the per-year price.
func (s *Settings) ApplyPrice(price int64, now time.Time) {
	s.PricePerYear = price
	s.UpdatedAt = now
}

// ApplyMultiplier overwrites the renewal multiplier.
func (s *Settings) ApplyMultiplier(multiplier int64, now time.Time) {
	s.RenewalMultiplier = multiplier
	s.UpdatedAt = now
}

// ApplyPaused sets the pause flag. Setting the current value again is legal
// and still counts as a change: callers re-emit the notification.
func (s *Settings) ApplyPaused(paused bool, now time.Time) {
	s.Paused = paused
	s.UpdatedAt = now
}
