// Package store provides storage backends for RemindMeBot.
//
// This file implements a PostgreSQL-backed reminder store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/roybase/remindmebot/internal/models"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) CreateReminder(chatID int64, title string, at time.Time) (*models.Reminder, error) {
	now := time.Now().UTC()
	r := models.Reminder{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Title:     title,
		Time:      at,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.Exec(
		`INSERT INTO reminders (id, chat_id, title, fire_at, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.ChatID, r.Title, r.Time, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		slog.Error("PostgresStore CreateReminder failed", "error", err, "chatID", chatID)
		return nil, fmt.Errorf("failed to insert reminder for chat %d: %w", chatID, err)
	}
	slog.Debug("PostgresStore CreateReminder succeeded", "id", r.ID, "chatID", chatID)
	return &r, nil
}

func (s *PostgresStore) ListReminders() ([]models.Reminder, error) {
	return s.queryReminders(`SELECT id, chat_id, title, fire_at, created_at, updated_at FROM reminders ORDER BY seq`)
}

func (s *PostgresStore) ListRemindersByChat(chatID int64) ([]models.Reminder, error) {
	return s.queryReminders(`SELECT id, chat_id, title, fire_at, created_at, updated_at FROM reminders WHERE chat_id = $1 ORDER BY seq`, chatID)
}

func (s *PostgresStore) queryReminders(query string, args ...interface{}) ([]models.Reminder, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		slog.Error("PostgresStore reminder query failed", "error", err)
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			slog.Error("PostgresStore reminder scan failed", "error", err)
			return nil, err
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore reminder rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate reminder rows: %w", err)
	}
	slog.Debug("PostgresStore reminder query succeeded", "count", len(reminders))
	return reminders, nil
}

func (s *PostgresStore) GetReminder(id string) (*models.Reminder, error) {
	row := s.db.QueryRow(`SELECT id, chat_id, title, fire_at, created_at, updated_at FROM reminders WHERE id = $1`, id)
	r, err := scanReminderRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("PostgresStore GetReminder failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get reminder %s: %w", id, err)
	}
	return &r, nil
}

func (s *PostgresStore) UpdateReminder(id string, upd models.ReminderUpdate) (*models.Reminder, error) {
	current, err := s.GetReminder(id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		current.Title = *upd.Title
	}
	if upd.Time != nil {
		current.Time = *upd.Time
	}
	current.UpdatedAt = time.Now().UTC()

	_, err = s.db.Exec(
		`UPDATE reminders SET title = $1, fire_at = $2, updated_at = $3 WHERE id = $4`,
		current.Title, current.Time, current.UpdatedAt, id,
	)
	if err != nil {
		slog.Error("PostgresStore UpdateReminder failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to update reminder %s: %w", id, err)
	}
	slog.Debug("PostgresStore UpdateReminder succeeded", "id", id)
	return current, nil
}

func (s *PostgresStore) DeleteReminder(id string) error {
	res, err := s.db.Exec(`DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		slog.Error("PostgresStore DeleteReminder failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete reminder %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result for %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	slog.Debug("PostgresStore DeleteReminder succeeded", "id", id)
	return nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	return s.db.Close()
}
