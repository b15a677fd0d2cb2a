package amqp

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"fintrack/internal/currency"
)

// RatesUpdatedMessage announces a freshly fetched rate table. Consumers prime
// their rate cache with it instead of calling the rates API themselves.
type RatesUpdatedMessage struct {
	Pivot     string         `json:"pivot"`
	Rates     currency.Rates `json:"rates"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// NewRatesUpdatedMessage builds a message for the given table
func NewRatesUpdatedMessage(pivot string, rates currency.Rates, fetchedAt time.Time) *RatesUpdatedMessage {
	return &RatesUpdatedMessage{
		Pivot:     strings.ToUpper(pivot),
		Rates:     rates.Clone(),
		FetchedAt: fetchedAt.UTC(),
	}
}

// Validate rejects messages that cannot prime a cache
func (m *RatesUpdatedMessage) Validate() error {
	if m.Pivot == "" {
		return errors.New("rates message has no pivot")
	}
	if len(m.Rates) == 0 {
		return errors.New("rates message has no rates")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *RatesUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RatesUpdatedMessageFromJSON decodes and validates a message
func RatesUpdatedMessageFromJSON(data []byte) (*RatesUpdatedMessage, error) {
	var msg RatesUpdatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	msg.Pivot = strings.ToUpper(msg.Pivot)
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
