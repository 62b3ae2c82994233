package ledger

import (
	"time"

	"github.com/google/uuid"

	id "namelease/pkg/domain"
)

// Kind classifies a ledger entry.
type Kind string

const (
	// KindCapture records payment taken by a successful claim or renewal.
	KindCapture Kind = "capture"
	// KindDeposit records value attached to the bare deposit endpoint.
	// It credits custody and changes nothing else.
	KindDeposit Kind = "deposit"
	// KindPayout records an admin withdrawal of the full custodial balance.
	KindPayout Kind = "payout"
)

// Entry is one journal line. The journal is append-only; the balance row is
// derived bookkeeping kept in the same transaction.
type Entry struct {
	ID      uuid.UUID    `json:"id"`
	Kind    Kind         `json:"kind"`
	Account id.AccountID `json:"account"`
	Amount  int64        `json:"amount"`
	At      time.Time    `json:"at"`
}
