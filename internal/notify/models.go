// Package notify carries registry change notifications to the outside
// world. Emission is fire-and-forget: a notification can be dropped or a
// sink can fail without ever failing the mutation that produced it.
package notify

import (
	"time"

	"github.com/google/uuid"

	id "namelease/pkg/domain"
)

// EventType names a registry change. The set is closed: consumers rely on
// these six types and nothing else is ever emitted.
type EventType string

const (
	EventDomainRegistered  EventType = "domain_registered"
	EventDomainRenewed     EventType = "domain_renewed"
	EventPriceChanged      EventType = "price_changed"
	EventMultiplierChanged EventType = "multiplier_changed"
	EventPaused            EventType = "paused"
	EventUnpaused          EventType = "unpaused"
)

// Event is one registry change notification. Fields beyond ID, Type and At
// are populated per type: lease events carry name/caller/amount/years,
// pricing events carry the new value, pause events carry nothing extra.
type Event struct {
	ID         uuid.UUID    `json:"id"`
	Type       EventType    `json:"type"`
	Name       string       `json:"name,omitempty"`
	Caller     id.AccountID `json:"caller,omitempty"`
	Amount     int64        `json:"amount,omitempty"`
	Years      int          `json:"years,omitempty"`
	Price      int64        `json:"price,omitempty"`
	Multiplier int64        `json:"multiplier,omitempty"`
	RequestID  string       `json:"request_id,omitempty"`
	At         time.Time    `json:"at"`
}

// Key returns the partition key for ordered delivery: lease events order
// per name, registry-wide events order among themselves under their type.
func (e Event) Key() string {
	if e.Name != "" {
		return e.Name
	}
	return string(e.Type)
}
