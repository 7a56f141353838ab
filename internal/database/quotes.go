package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/austerelabs/stockfinder/internal/models"
	"github.com/austerelabs/stockfinder/internal/provider"
)

// EarliestQuoteDate is the sentinel watermark for symbols with no
// persisted history: the first incremental fetch pulls everything the
// provider has from this date forward.
var EarliestQuoteDate = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// ResolveWatermarks returns the most recent persisted quote date for
// every active symbol. Symbols with no quotes yet get EarliestQuoteDate.
func (db *DB) ResolveWatermarks() ([]models.Watermark, error) {
	query := `
		WITH max_dates AS (
			SELECT symbol, MAX(date) AS max_date
			FROM symbol_quotes
			GROUP BY symbol
		)
		SELECT s.symbol, COALESCE(m.max_date, $1) AS max_date
		FROM symbols s
		LEFT JOIN max_dates m ON s.symbol = m.symbol
		WHERE s.active = true
		ORDER BY s.symbol ASC
	`
	rows, err := db.conn.Query(query, EarliestQuoteDate)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watermarks: %w", err)
	}
	defer rows.Close()

	var watermarks []models.Watermark
	for rows.Next() {
		var w models.Watermark
		if err := rows.Scan(&w.Symbol, &w.MaxDate); err != nil {
			return nil, fmt.Errorf("failed to scan watermark: %w", err)
		}
		watermarks = append(watermarks, w)
	}

	return watermarks, nil
}

// TruncateStaging clears the staging table so a previous run's rows
// cannot double-contribute to this run's merge.
func (db *DB) TruncateStaging() error {
	_, err := db.conn.Exec(`TRUNCATE TABLE symbol_quotes_staging`)
	if err != nil {
		return fmt.Errorf("failed to truncate staging: %w", err)
	}
	return nil
}

// StageQuotes batch-inserts freshly fetched quotes into the staging
// table. An empty batch is a no-op, not an error.
func (db *DB) StageQuotes(quotes []models.DailyQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The column list comes from the provider's normalized field labels,
	// so the staging schema tracks what the fetch actually returns.
	cols := provider.StagingColumns()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO symbol_quotes_staging (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, q := range quotes {
		_, err := stmt.Exec(q.Symbol, q.Date, q.Open, q.High, q.Low, q.Close, q.AdjClose, q.Volume)
		if err != nil {
			return fmt.Errorf("failed to stage quote for %s: %w", q.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// MergeStaged upserts every staged row into symbol_quotes. Existing
// (symbol, date) pairs win: the conflict target's DO NOTHING makes the
// merge idempotent, so re-running the same staged batch leaves the
// store unchanged. Returns the number of rows actually inserted.
func (db *DB) MergeStaged() (int64, error) {
	query := `
		INSERT INTO symbol_quotes (symbol, date, open, high, low, close, adj_close, volume)
		SELECT symbol, CAST(date AS date), open, high, low, close, adj_close, volume
		FROM symbol_quotes_staging
		ON CONFLICT (symbol, date) DO NOTHING
	`
	result, err := db.conn.Exec(query)
	if err != nil {
		return 0, fmt.Errorf("failed to merge staged quotes: %w", err)
	}
	return result.RowsAffected()
}

// GetQuotesRange retrieves quotes for a symbol within a date range
func (db *DB) GetQuotesRange(symbol string, startDate, endDate time.Time) ([]*models.DailyQuote, error) {
	query := `
		SELECT symbol, date, open, high, low, close, adj_close, volume
		FROM symbol_quotes
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`
	rows, err := db.conn.Query(query, symbol, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes range: %w", err)
	}
	defer rows.Close()

	var quotes []*models.DailyQuote
	for rows.Next() {
		var q models.DailyQuote
		err := rows.Scan(&q.Symbol, &q.Date, &q.Open, &q.High, &q.Low, &q.Close, &q.AdjClose, &q.Volume)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, &q)
	}

	return quotes, nil
}

// GetLatestQuote retrieves the most recent merged quote for a symbol
func (db *DB) GetLatestQuote(symbol string) (*models.DailyQuote, error) {
	query := `
		SELECT symbol, date, open, high, low, close, adj_close, volume
		FROM symbol_quotes
		WHERE symbol = $1
		ORDER BY date DESC
		LIMIT 1
	`
	var q models.DailyQuote
	err := db.conn.QueryRow(query, symbol).Scan(
		&q.Symbol, &q.Date, &q.Open, &q.High, &q.Low, &q.Close, &q.AdjClose, &q.Volume,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no quotes found for %s", symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest quote: %w", err)
	}

	return &q, nil
}

// CountQuotes returns the number of merged rows for a symbol
func (db *DB) CountQuotes(symbol string) (int, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM symbol_quotes WHERE symbol = $1`, symbol).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}
	return count, nil
}
