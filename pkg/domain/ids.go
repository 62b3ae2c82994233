// Package domain holds shared domain primitives. Typed IDs wrap uuid.UUID so
// the compiler rejects cross-type assignment and call sites state which kind
// of identity they carry.
package domain

import (
	"github.com/google/uuid"

	dErrors "namelease/pkg/domain-errors"
)

// AccountID identifies an account that can hold leases. The zero value
// (uuid.Nil) is meaningful: it is the unclaimed-owner sentinel on lease
// records and must never be accepted as a caller identity.
type AccountID uuid.UUID

// NilAccount is the unclaimed-owner sentinel.
var NilAccount = AccountID(uuid.Nil)

// NewAccountID returns a random AccountID.
func NewAccountID() AccountID {
	return AccountID(uuid.New())
}

// ParseAccountID validates an identity received at a trust boundary.
// It rejects empty strings, malformed UUIDs, and the nil UUID: a real
// caller never has the unclaimed sentinel as its identity.
func ParseAccountID(s string) (AccountID, error) {
	if s == "" {
		return NilAccount, dErrors.New(dErrors.CodeInvalidInput, "account id must not be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return NilAccount, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid account id")
	}
	if id == uuid.Nil {
		return NilAccount, dErrors.New(dErrors.CodeInvalidInput, "account id must not be nil")
	}
	return AccountID(id), nil
}

func (id AccountID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether id is the unclaimed sentinel.
func (id AccountID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText serializes for JSON and text encodings.
func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

// UnmarshalText accepts any well-formed UUID, including the nil UUID:
// persisted lease records round-trip the unclaimed sentinel. Trust-boundary
// validation belongs to ParseAccountID, not here.
func (id *AccountID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = AccountID(u)
	return nil
}
