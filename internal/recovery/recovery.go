// Package recovery re-arms persisted reminders after a process restart.
package recovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roybase/remindmebot/internal/models"
	"github.com/roybase/remindmebot/internal/store"
)

// Armer registers a fire timer for a reminder. Implemented by the bot's
// dispatcher.
type Armer interface {
	ArmReminder(r models.Reminder)
}

// Recover loads every persisted reminder and arms its timer. Reminders whose
// fire time has already passed are armed anyway and fire immediately, so a
// notification missed during downtime is delivered late rather than lost.
func Recover(ctx context.Context, st store.Store, armer Armer) error {
	reminders, err := st.ListReminders()
	if err != nil {
		return fmt.Errorf("failed to load reminders for recovery: %w", err)
	}

	now := time.Now()
	pastDue := 0
	for _, r := range reminders {
		if r.Time.Before(now) {
			pastDue++
		}
		armer.ArmReminder(r)
	}

	slog.Info("recovery.Recover: reminders re-armed", "count", len(reminders), "pastDue", pastDue)
	return nil
}
