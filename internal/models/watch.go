package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Watch is a configured price band for a symbol. Prices outside
// [LowerBound, UpperBound] trigger a notification.
type Watch struct {
	ID         int             `json:"id"`
	Symbol     string          `json:"symbol"`
	LowerBound decimal.Decimal `json:"lower_bound"`
	UpperBound decimal.Decimal `json:"upper_bound"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NotificationRecord is one dedup-ledger entry: a notification went
// out for Symbol on the calendar day SentOn. At most one entry exists
// per (symbol, sent_on).
type NotificationRecord struct {
	ID      int             `json:"id"`
	Symbol  string          `json:"symbol"`
	SentOn  time.Time       `json:"sent_on"`
	Price   decimal.Decimal `json:"price"`
	Message string          `json:"message,omitempty"`
	SentAt  time.Time       `json:"sent_at"`
}

// AlertEvent represents a Kafka event for a triggered watch
type AlertEvent struct {
	EventType string          `json:"event_type"`
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
}
