package store

import (
	"database/sql"
	"fmt"

	"github.com/roybase/remindmebot/internal/models"
)

// scanReminder scans a Reminder from sql.Rows.
func scanReminder(rows *sql.Rows) (models.Reminder, error) {
	var r models.Reminder
	err := rows.Scan(&r.ID, &r.ChatID, &r.Title, &r.Time, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return r, fmt.Errorf("scan reminder failed: %w", err)
	}
	return r, nil
}

// scanReminderRow scans a Reminder from a single sql.Row.
func scanReminderRow(row *sql.Row) (models.Reminder, error) {
	var r models.Reminder
	err := row.Scan(&r.ID, &r.ChatID, &r.Title, &r.Time, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return r, err
	}
	return r, nil
}
