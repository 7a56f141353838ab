package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyQuote represents one OHLCV bar for a (symbol, trading date) pair.
// The pair is unique in symbol_quotes; a merged row is never updated.
type DailyQuote struct {
	Symbol   string          `json:"symbol"`
	Date     time.Time       `json:"date"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	AdjClose decimal.Decimal `json:"adj_close"`
	Volume   int64           `json:"volume"`
}

// Watermark is the most recent quote date already persisted for a symbol.
// Symbols with no history carry the sentinel earliest date.
type Watermark struct {
	Symbol  string    `json:"symbol"`
	MaxDate time.Time `json:"max_date"`
}

// LoadEvent represents a Kafka event emitted after a loader run merges
type LoadEvent struct {
	EventType string    `json:"event_type"`
	Symbols   int       `json:"symbols"`
	Staged    int       `json:"staged"`
	Merged    int64     `json:"merged"`
	Timestamp time.Time `json:"timestamp"`
}
