// Package store provides storage backends for RemindMeBot.
//
// This file implements an in-memory store used in tests and when no DSN is
// configured.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/roybase/remindmebot/internal/models"
)

// InMemoryStore keeps reminders in a slice to preserve insertion order.
type InMemoryStore struct {
	mu        sync.Mutex
	reminders []models.Reminder
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) CreateReminder(chatID int64, title string, at time.Time) (*models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	r := models.Reminder{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Title:     title,
		Time:      at,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.reminders = append(s.reminders, r)
	return &r, nil
}

func (s *InMemoryStore) ListReminders() ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Reminder, len(s.reminders))
	copy(out, s.reminders)
	return out, nil
}

func (s *InMemoryStore) ListRemindersByChat(chatID int64) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Reminder
	for _, r := range s.reminders {
		if r.ChatID == chatID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *InMemoryStore) GetReminder(id string) (*models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.reminders {
		if r.ID == id {
			found := r
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) UpdateReminder(id string, upd models.ReminderUpdate) (*models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reminders {
		if s.reminders[i].ID == id {
			if upd.Title != nil {
				s.reminders[i].Title = *upd.Title
			}
			if upd.Time != nil {
				s.reminders[i].Time = *upd.Time
			}
			s.reminders[i].UpdatedAt = time.Now().UTC()
			updated := s.reminders[i]
			return &updated, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) DeleteReminder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reminders {
		if s.reminders[i].ID == id {
			s.reminders = append(s.reminders[:i], s.reminders[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
