package amqp

import (
	"encoding/json"
	"time"

	"mensalidades/internal/core"
)

// Actions carried by PaymentEvent.
const (
	ActionRecorded = "recorded"
	ActionUpdated  = "updated"
	ActionRemoved  = "removed"
)

// PaymentEvent announces a ledger mutation. It carries the full record so
// consumers never need read access to the data file.
type PaymentEvent struct {
	Action    string       `json:"action"`
	Payment   core.Payment `json:"payment"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewPaymentEvent creates an event for the given action and record.
func NewPaymentEvent(action string, p core.Payment) *PaymentEvent {
	return &PaymentEvent{
		Action:    action,
		Payment:   p,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *PaymentEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PaymentEventFromJSON parses an event from JSON bytes.
func PaymentEventFromJSON(data []byte) (*PaymentEvent, error) {
	var ev PaymentEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
