package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// EventDefaultChanged is the event name carried by DefaultChangedMessage.
const EventDefaultChanged = "account.default_changed"

// DefaultChangedMessage announces that an account became the default account.
// The worker only needs the ids; the account itself is read from the source of truth.
type DefaultChangedMessage struct {
	Event             string    `json:"event"`
	AccountID         string    `json:"account_id"`
	PreviousDefaultID string    `json:"previous_default_id,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// NewDefaultChangedMessage creates a message for accountID.
func NewDefaultChangedMessage(accountID, previousID string) *DefaultChangedMessage {
	return &DefaultChangedMessage{
		Event:             EventDefaultChanged,
		AccountID:         accountID,
		PreviousDefaultID: previousID,
		Timestamp:         time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DefaultChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DefaultChangedMessageFromJSON decodes and validates a message.
func DefaultChangedMessageFromJSON(data []byte) (*DefaultChangedMessage, error) {
	var msg DefaultChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Event != EventDefaultChanged {
		return nil, errors.New("unexpected event " + msg.Event)
	}
	if msg.AccountID == "" {
		return nil, errors.New("missing account_id")
	}
	return &msg, nil
}
