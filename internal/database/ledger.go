package database

import (
	"fmt"
	"time"

	"github.com/austerelabs/stockfinder/internal/models"
)

// HasNotified reports whether a notification already went out for this
// symbol on this calendar day. An empty ledger yields false, not an
// error.
func (db *DB) HasNotified(symbol string, day time.Time) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM alert_notifications WHERE symbol = $1 AND sent_on = $2)`
	var exists bool
	err := db.conn.QueryRow(query, symbol, day.Format("2006-01-02")).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check notification ledger: %w", err)
	}
	return exists, nil
}

// RecordNotification appends one dedup-ledger entry. A duplicate
// (symbol, sent_on) pair is silently rejected by the unique constraint,
// never surfaced to the caller.
func (db *DB) RecordNotification(r *models.NotificationRecord) error {
	query := `
		INSERT INTO alert_notifications (symbol, sent_on, price, message, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol, sent_on) DO NOTHING
	`
	now := time.Now()
	_, err := db.conn.Exec(query,
		r.Symbol, r.SentOn.Format("2006-01-02"), r.Price, r.Message, now,
	)
	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	r.SentAt = now
	return nil
}

// GetNotifications retrieves recent ledger entries, newest first
func (db *DB) GetNotifications(limit int) ([]*models.NotificationRecord, error) {
	query := `
		SELECT id, symbol, sent_on, price, message, sent_at
		FROM alert_notifications
		ORDER BY sent_at DESC
		LIMIT $1
	`
	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var records []*models.NotificationRecord
	for rows.Next() {
		var r models.NotificationRecord
		err := rows.Scan(&r.ID, &r.Symbol, &r.SentOn, &r.Price, &r.Message, &r.SentAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		records = append(records, &r)
	}

	return records, nil
}

// DeleteNotificationsOlderThan prunes ledger entries sent before the
// given day. Returns the number of rows removed.
func (db *DB) DeleteNotificationsOlderThan(day time.Time) (int64, error) {
	result, err := db.conn.Exec(`DELETE FROM alert_notifications WHERE sent_on < $1`, day.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old notifications: %w", err)
	}
	return result.RowsAffected()
}
