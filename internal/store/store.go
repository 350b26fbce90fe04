// Package store provides storage backends for RemindMeBot reminder records.
//
// It includes an in-memory store for tests and development, plus SQLite and
// PostgreSQL backends for persistent deployments.
package store

import (
	"errors"
	"strings"
	"time"

	"github.com/roybase/remindmebot/internal/models"
)

// ErrNotFound is returned when an operation targets a reminder ID that does
// not exist (either never created, already fired, or already deleted).
var ErrNotFound = errors.New("reminder not found")

// Store defines CRUD over reminder records. Operations are independent; no
// transactions span the store and the scheduler — composition is the
// caller's responsibility.
type Store interface {
	// CreateReminder persists a new reminder and assigns its ID.
	CreateReminder(chatID int64, title string, at time.Time) (*models.Reminder, error)

	// ListReminders returns all reminders in insertion order.
	ListReminders() ([]models.Reminder, error)

	// ListRemindersByChat returns the chat's reminders in insertion order.
	ListRemindersByChat(chatID int64) ([]models.Reminder, error)

	// GetReminder fetches a reminder by ID. Returns ErrNotFound if absent.
	GetReminder(id string) (*models.Reminder, error)

	// UpdateReminder applies a partial update and returns the updated record.
	// Returns ErrNotFound if the ID is absent.
	UpdateReminder(id string, upd models.ReminderUpdate) (*models.Reminder, error)

	// DeleteReminder removes a reminder. Returns ErrNotFound if absent.
	DeleteReminder(id string) error

	// Close releases underlying resources.
	Close() error
}

// Opts holds configuration for store backends.
type Opts struct {
	DSN string
}

// Option configures store creation.
type Option func(*Opts)

// WithSQLiteDSN sets a SQLite file path as the store DSN.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets a PostgreSQL connection string as the store DSN.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite". File paths and
// file: URIs are treated as SQLite; URL-style and key=value connection
// strings as PostgreSQL.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}
