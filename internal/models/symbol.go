package models

import "time"

// Symbol represents a tradable ticker tracked by the loader.
// Deactivation is a soft flag; rows are never deleted so quote
// history stays attributable.
type Symbol struct {
	Symbol      string    `json:"symbol"`
	Type        string    `json:"type,omitempty"`
	Subtype     string    `json:"subtype,omitempty"`
	Exchange    string    `json:"exchange,omitempty"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Comment     string    `json:"comment,omitempty"`
	Active      bool      `json:"active"`
	AddedAt     time.Time `json:"added_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SymbolEvent represents a Kafka event for symbol changes
type SymbolEvent struct {
	EventType string    `json:"event_type"`
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
}
