// Package store provides storage backends for RemindMeBot.
//
// This file implements a SQLite-backed reminder store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/roybase/remindmebot/internal/models"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateReminder(chatID int64, title string, at time.Time) (*models.Reminder, error) {
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
		`INSERT INTO reminders (id, chat_id, title, fire_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.ChatID, r.Title, r.Time, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore CreateReminder failed", "error", err, "chatID", chatID)
		return nil, fmt.Errorf("failed to insert reminder for chat %d: %w", chatID, err)
	}
	slog.Debug("SQLiteStore CreateReminder succeeded", "id", r.ID, "chatID", chatID)
	return &r, nil
}

func (s *SQLiteStore) ListReminders() ([]models.Reminder, error) {
	return s.queryReminders(`SELECT id, chat_id, title, fire_at, created_at, updated_at FROM reminders ORDER BY rowid`)
}

func (s *SQLiteStore) ListRemindersByChat(chatID int64) ([]models.Reminder, error) {
	return s.queryReminders(`SELECT id, chat_id, title, fire_at, created_at, updated_at FROM reminders WHERE chat_id = ? ORDER BY rowid`, chatID)
}

func (s *SQLiteStore) queryReminders(query string, args ...interface{}) ([]models.Reminder, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		slog.Error("SQLiteStore reminder query failed", "error", err)
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			slog.Error("SQLiteStore reminder scan failed", "error", err)
			return nil, err
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore reminder rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate reminder rows: %w", err)
	}
	slog.Debug("SQLiteStore reminder query succeeded", "count", len(reminders))
	return reminders, nil
}

func (s *SQLiteStore) GetReminder(id string) (*models.Reminder, error) {
	row := s.db.QueryRow(`SELECT id, chat_id, title, fire_at, created_at, updated_at FROM reminders WHERE id = ?`, id)
	r, err := scanReminderRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("SQLiteStore GetReminder failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get reminder %s: %w", id, err)
	}
	return &r, nil
}

func (s *SQLiteStore) UpdateReminder(id string, upd models.ReminderUpdate) (*models.Reminder, error) {
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
		`UPDATE reminders SET title = ?, fire_at = ?, updated_at = ? WHERE id = ?`,
		current.Title, current.Time, current.UpdatedAt, id,
	)
	if err != nil {
		slog.Error("SQLiteStore UpdateReminder failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to update reminder %s: %w", id, err)
	}
	slog.Debug("SQLiteStore UpdateReminder succeeded", "id", id)
	return current, nil
}

func (s *SQLiteStore) DeleteReminder(id string) error {
	res, err := s.db.Exec(`DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		slog.Error("SQLiteStore DeleteReminder failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete reminder %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result for %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	slog.Debug("SQLiteStore DeleteReminder succeeded", "id", id)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}
