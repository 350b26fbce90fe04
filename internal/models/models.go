// Package models defines the core data structures shared across RemindMeBot components.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Reminder is the sole persistent entity: a scheduled notification owned by a chat.
type Reminder struct {
	ID        string    `json:"id"`         // Store-assigned UUID, immutable, also the scheduler timer key
	ChatID    int64     `json:"chat_id"`    // Owning chat, immutable
	Title     string    `json:"title"`      // Non-empty reminder text
	Time      time.Time `json:"time"`       // Absolute fire time
	CreatedAt time.Time `json:"created_at"` // Bookkeeping, set by the store
	UpdatedAt time.Time `json:"updated_at"` // Bookkeeping, maintained by the store
}

// ReminderUpdate describes a partial update to a reminder. Nil fields are left unchanged.
type ReminderUpdate struct {
	Title *string
	Time  *time.Time
}

// IsEmpty reports whether the update would change nothing.
func (u ReminderUpdate) IsEmpty() bool {
	return u.Title == nil && u.Time == nil
}

// reminderTimeLayouts are the layouts accepted from the language model, most specific
// first. The system prompt instructs the model to emit "2006-01-02T15:04:05", but
// models are not always obedient, so RFC3339 and a minute-precision variant are
// tolerated too.
var reminderTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseReminderTime parses a model-supplied timestamp string. Layouts without an
// explicit offset are interpreted in the process-local timezone.
func ParseReminderTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time string")
	}
	for _, layout := range reminderTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format: %q", s)
}

// FormatReminderTime renders a fire time for user-facing listings.
func FormatReminderTime(t time.Time) string {
	return t.Local().Format("Jan 2, 2006 3:04 PM")
}
