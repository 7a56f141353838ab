package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/austerelabs/stockfinder/internal/models"
)

// CreateSymbol adds a symbol to the tracked list, updating metadata on
// conflict so re-submitting an existing symbol is not an error.
func (db *DB) CreateSymbol(s *models.Symbol) error {
	query := `
		INSERT INTO symbols (
			symbol, type, subtype, exchange, category, description, comment,
			active, added_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (symbol) DO UPDATE SET
			type = EXCLUDED.type,
			subtype = EXCLUDED.subtype,
			exchange = EXCLUDED.exchange,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			comment = EXCLUDED.comment,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	_, err := db.conn.Exec(query,
		s.Symbol, s.Type, s.Subtype, s.Exchange, s.Category, s.Description, s.Comment,
		s.Active, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create symbol: %w", err)
	}
	s.AddedAt = now
	s.UpdatedAt = now
	return nil
}

// GetSymbol retrieves a symbol by its ticker
func (db *DB) GetSymbol(symbol string) (*models.Symbol, error) {
	query := `
		SELECT symbol, type, subtype, exchange, category, description, comment,
		       active, added_at, updated_at
		FROM symbols
		WHERE symbol = $1
	`
	var s models.Symbol
	var symType, subtype, exchange, category, description, comment sql.NullString

	err := db.conn.QueryRow(query, symbol).Scan(
		&s.Symbol, &symType, &subtype, &exchange, &category, &description, &comment,
		&s.Active, &s.AddedAt, &s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("symbol not found: %s", symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get symbol: %w", err)
	}

	applyNullableSymbolFields(&s, symType, subtype, exchange, category, description, comment)
	return &s, nil
}

// GetAllSymbols retrieves every symbol, active or not
func (db *DB) GetAllSymbols() ([]*models.Symbol, error) {
	query := `
		SELECT symbol, type, subtype, exchange, category, description, comment,
		       active, added_at, updated_at
		FROM symbols
		ORDER BY symbol ASC
	`
	return db.scanSymbols(db.conn.Query(query))
}

// GetActiveSymbols retrieves the symbols the loader should fetch
func (db *DB) GetActiveSymbols() ([]string, error) {
	query := `
		SELECT symbol
		FROM symbols
		WHERE active = true
		ORDER BY symbol ASC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	return symbols, nil
}

func (db *DB) scanSymbols(rows *sql.Rows, err error) ([]*models.Symbol, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []*models.Symbol
	for rows.Next() {
		var s models.Symbol
		var symType, subtype, exchange, category, description, comment sql.NullString

		err := rows.Scan(
			&s.Symbol, &symType, &subtype, &exchange, &category, &description, &comment,
			&s.Active, &s.AddedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}

		applyNullableSymbolFields(&s, symType, subtype, exchange, category, description, comment)
		symbols = append(symbols, &s)
	}

	return symbols, nil
}

func applyNullableSymbolFields(s *models.Symbol, symType, subtype, exchange, category, description, comment sql.NullString) {
	if symType.Valid {
		s.Type = symType.String
	}
	if subtype.Valid {
		s.Subtype = subtype.String
	}
	if exchange.Valid {
		s.Exchange = exchange.String
	}
	if category.Valid {
		s.Category = category.String
	}
	if description.Valid {
		s.Description = description.String
	}
	if comment.Valid {
		s.Comment = comment.String
	}
}

// DeactivateSymbol soft-disables a symbol. History stays in place so
// merged quotes remain attributable.
func (db *DB) DeactivateSymbol(symbol string) error {
	return db.setSymbolActive(symbol, false)
}

// ActivateSymbol re-enables a previously deactivated symbol
func (db *DB) ActivateSymbol(symbol string) error {
	return db.setSymbolActive(symbol, true)
}

func (db *DB) setSymbolActive(symbol string, active bool) error {
	query := `UPDATE symbols SET active = $2, updated_at = $3 WHERE symbol = $1`
	result, err := db.conn.Exec(query, symbol, active, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update symbol %s: %w", symbol, err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("symbol not found: %s", symbol)
	}
	return nil
}
