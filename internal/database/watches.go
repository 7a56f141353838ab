package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/austerelabs/stockfinder/internal/models"
)

// CreateWatch inserts a new watch for a symbol
func (db *DB) CreateWatch(w *models.Watch) error {
	query := `
		INSERT INTO watches (symbol, lower_bound, upper_bound, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		w.Symbol, w.LowerBound, w.UpperBound, w.Enabled, now, now,
	).Scan(&w.ID)

	if err != nil {
		return fmt.Errorf("failed to create watch: %w", err)
	}
	w.CreatedAt = now
	w.UpdatedAt = now
	return nil
}

// GetWatchByID retrieves a watch by ID
func (db *DB) GetWatchByID(id int) (*models.Watch, error) {
	query := `
		SELECT id, symbol, lower_bound, upper_bound, enabled, created_at, updated_at
		FROM watches
		WHERE id = $1
	`
	var w models.Watch
	err := db.conn.QueryRow(query, id).Scan(
		&w.ID, &w.Symbol, &w.LowerBound, &w.UpperBound, &w.Enabled, &w.CreatedAt, &w.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("watch not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watch: %w", err)
	}

	return &w, nil
}

// GetEnabledWatches retrieves all enabled watches, the set the notifier
// evaluates on every tick
func (db *DB) GetEnabledWatches() ([]models.Watch, error) {
	query := `
		SELECT id, symbol, lower_bound, upper_bound, enabled, created_at, updated_at
		FROM watches
		WHERE enabled = true
		ORDER BY symbol ASC
	`
	return db.scanWatches(db.conn.Query(query))
}

// GetAllWatches retrieves every watch, enabled or not
func (db *DB) GetAllWatches() ([]models.Watch, error) {
	query := `
		SELECT id, symbol, lower_bound, upper_bound, enabled, created_at, updated_at
		FROM watches
		ORDER BY symbol ASC
	`
	return db.scanWatches(db.conn.Query(query))
}

func (db *DB) scanWatches(rows *sql.Rows, err error) ([]models.Watch, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query watches: %w", err)
	}
	defer rows.Close()

	var watches []models.Watch
	for rows.Next() {
		var w models.Watch
		err := rows.Scan(&w.ID, &w.Symbol, &w.LowerBound, &w.UpperBound, &w.Enabled, &w.CreatedAt, &w.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watch: %w", err)
		}
		watches = append(watches, w)
	}

	return watches, nil
}

// UpdateWatch updates an existing watch
func (db *DB) UpdateWatch(w *models.Watch) error {
	query := `
		UPDATE watches SET
			lower_bound = $2, upper_bound = $3, enabled = $4, updated_at = $5
		WHERE id = $1
	`
	w.UpdatedAt = time.Now()
	result, err := db.conn.Exec(query, w.ID, w.LowerBound, w.UpperBound, w.Enabled, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update watch: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("watch not found: %d", w.ID)
	}
	return nil
}

// DeleteWatch removes a watch by ID
func (db *DB) DeleteWatch(id int) error {
	result, err := db.conn.Exec(`DELETE FROM watches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete watch: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("watch not found: %d", id)
	}
	return nil
}
