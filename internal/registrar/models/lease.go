package models

import (
	"time"

	id "namelease/pkg/domain"
	dErrors "namelease/pkg/domain-errors"
)

// LeaseYear is the fixed accounting year for lease terms. Expiry math uses
// 365 days with no leap adjustment; the drift is accepted and documented in
// the API contract.
const LeaseYear = 365 * 24 * time.Hour

// Term bounds for a single claim or renewal. The bounds apply per operation:
// repeated renewals may push the cumulative DurationYears past MaxTermYears.
const (
	MinTermYears = 1
	MaxTermYears = 10
)

// maxNameLength caps lease names at the DNS limit. Names are otherwise
// opaque: exact-match keys with no case folding or normalization, so
// "Example.test" and "example.test" are distinct leases.
const maxNameLength = 253

// Lease is the registration record for one name.
//
// Invariants:
//   - A record is never deleted; reclaiming an expired name overwrites it
//   - Owner == the nil account means the name has never been claimed
//   - RegisteredAt is set by claim only; renewal never touches it
//   - DurationYears is cumulative: claim resets it, renewal adds to it
//   - PaidAmount is cumulative within one ownership: claim overwrites it
//     with the full attached payment, renewal adds the full payment
//
// Over-payment is kept, not refunded. The record tracks what was captured,
// not what was owed.
type Lease struct {
	Name          string       `json:"name"`
	Owner         id.AccountID `json:"owner"`
	RegisteredAt  time.Time    `json:"registered_at"`
	DurationYears int          `json:"duration_years"`
	PaidAmount    int64        `json:"paid_amount"`
}

// ValidateName checks a lease name at the trust boundary.
func ValidateName(name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(name) > maxNameLength {
		return dErrors.Newf(dErrors.CodeValidation, "name must be at most %d bytes", maxNameLength)
	}
	return nil
}

// ValidTerm reports whether a single operation's term is within bounds.
func ValidTerm(years int) bool {
	return years >= MinTermYears && years <= MaxTermYears
}

// NewLease constructs the record a successful claim writes.
func NewLease(name string, owner id.AccountID, years int, payment int64, now time.Time) (*Lease, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "lease owner cannot be the nil account")
	}
	if !ValidTerm(years) {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "term must be between %d and %d years", MinTermYears, MaxTermYears)
	}
	if payment < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "payment cannot be negative")
	}
	return &Lease{
		Name:          name,
		Owner:         owner,
		RegisteredAt:  now,
		DurationYears: years,
		PaidAmount:    payment,
	}, nil
}

// IsClaimed reports whether the record has ever been claimed.
func (l *Lease) IsClaimed() bool {
	return !l.Owner.IsNil()
}

// ExpiresAt returns the instant the lease lapses.
func (l *Lease) ExpiresAt() time.Time {
	return l.RegisteredAt.Add(time.Duration(l.DurationYears) * LeaseYear)
}

// Expired reports whether the lease has lapsed at now. The boundary is
// exclusive: at now == ExpiresAt the lease is still active.
func (l *Lease) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt())
}

// Available reports whether a claim may take the name at now: either the
// record was never claimed or its lease has expired. A lapsed owner keeps
// no hold on the name; availability is purely temporal.
func (l *Lease) Available(now time.Time) bool {
	return !l.IsClaimed() || l.Expired(now)
}

// OwnedBy reports whether caller is the recorded owner. Expiry is not
// considered: a lapsed owner is still the owner until someone reclaims.
func (l *Lease) OwnedBy(caller id.AccountID) bool {
	return !l.Owner.IsNil() && l.Owner == caller
}

// ApplyClaim overwrites the record for a new ownership. Every field resets:
// prior duration and payments do not carry across owners, and an expired
// owner reclaiming their own name starts a fresh term on the same rules.
func (l *Lease) ApplyClaim(owner id.AccountID, years int, payment int64, now time.Time) {
	l.Owner = owner
	l.RegisteredAt = now
	l.DurationYears = years
	l.PaidAmount = payment
}

// ApplyRenewal extends the current ownership in place. RegisteredAt is
// deliberately untouched: the extension grows DurationYears, so expiry
// still moves forward by the added term.
func (l *Lease) ApplyRenewal(additionalYears int, payment int64) {
	l.DurationYears += additionalYears
	l.PaidAmount += payment
}
