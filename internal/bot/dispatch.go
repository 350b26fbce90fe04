package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roybase/remindmebot/internal/messaging"
	"github.com/roybase/remindmebot/internal/models"
	"github.com/roybase/remindmebot/internal/scheduler"
	"github.com/roybase/remindmebot/internal/store"
)

// reminderNotificationFormat is the message sent when a reminder fires.
const reminderNotificationFormat = "⏰ Hi, this is your REMINDER: %s"

// buttonsPerRow is the inline keyboard grid width for selection buttons.
const buttonsPerRow = 2

// rearmSlack separates a genuine fire from a timer that lost a race with a
// reschedule: if the stored fire time is further than this in the future,
// the record was rescheduled and the stale fire is suppressed.
const rearmSlack = time.Second

// idLocks provides a per-reminder-ID critical section so a timer fire cannot
// interleave with an update or delete of the same reminder. Entries are
// never evicted; the map stays proportional to the number of distinct
// reminders handled by this process.
type idLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *idLocks) get(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// Dispatcher executes the deterministic reminder operations against the
// store and the scheduler. All mutations of a single reminder take that
// reminder's lock across cancel, store mutation and re-arm.
type Dispatcher struct {
	store store.Store
	sched *scheduler.Scheduler
	msg   messaging.Service
	locks idLocks
}

// NewDispatcher creates a dispatcher over the given collaborators.
func NewDispatcher(st store.Store, sched *scheduler.Scheduler, msg messaging.Service) *Dispatcher {
	return &Dispatcher{store: st, sched: sched, msg: msg}
}

// ArmReminder registers the fire timer for a reminder. Used on creation,
// after updates, and during boot recovery; past-due reminders fire
// immediately.
func (d *Dispatcher) ArmReminder(r models.Reminder) {
	id := r.ID
	d.sched.Arm(id, r.Time, func() { d.fire(id) })
}

// fire delivers a reminder's notification and removes the record. Delivery
// is at-most-once: a failed send is logged and the reminder is still
// deleted.
func (d *Dispatcher) fire(id string) {
	lock := d.locks.get(id)
	lock.Lock()
	defer lock.Unlock()

	r, err := d.store.GetReminder(id)
	if errors.Is(err, store.ErrNotFound) {
		slog.Debug("Dispatcher.fire: reminder already gone, skipping", "id", id)
		return
	}
	if err != nil {
		slog.Error("Dispatcher.fire: failed to load reminder", "error", err, "id", id)
		return
	}
	// The timer may have been in flight while the reminder was rescheduled;
	// in that case a new timer owns the new fire time.
	if r.Time.After(time.Now().Add(rearmSlack)) {
		slog.Debug("Dispatcher.fire: reminder was rescheduled, skipping stale fire", "id", id, "newTime", r.Time)
		return
	}

	ctx := context.Background()
	if err := d.msg.SendMessage(ctx, r.ChatID, fmt.Sprintf(reminderNotificationFormat, r.Title)); err != nil {
		slog.Error("Dispatcher.fire: notification send failed, reminder is dropped anyway", "error", err, "id", id, "chatID", r.ChatID)
	}
	if err := d.store.DeleteReminder(id); err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Error("Dispatcher.fire: failed to delete fired reminder", "error", err, "id", id)
		return
	}
	slog.Info("Dispatcher.fire: reminder fired", "id", id, "chatID", r.ChatID, "title", r.Title)
}

// CreateReminders creates and arms each drafted reminder for the chat.
// A mid-batch store failure is reported per draft; prior successes stand.
func (d *Dispatcher) CreateReminders(ctx context.Context, chatID int64, params *models.CreateRemindersParams) *models.ToolResult {
	created := 0
	var failures []string
	for i, draft := range params.Reminders {
		at, err := models.ParseReminderTime(draft.Time)
		if err != nil {
			slog.Warn("Dispatcher.CreateReminders: unparseable time", "error", err, "chatID", chatID, "title", draft.Title)
			failures = append(failures, fmt.Sprintf("%q: bad time", draft.Title))
			continue
		}
		r, err := d.store.CreateReminder(chatID, draft.Title, at)
		if err != nil {
			slog.Error("Dispatcher.CreateReminders: store create failed", "error", err, "chatID", chatID, "index", i)
			failures = append(failures, fmt.Sprintf("%q: could not be saved", draft.Title))
			continue
		}
		d.ArmReminder(*r)
		created++
	}

	slog.Info("Dispatcher.CreateReminders: done", "chatID", chatID, "created", created, "failed", len(failures))
	if len(failures) > 0 {
		return &models.ToolResult{
			Success: created > 0,
			Message: fmt.Sprintf("Some reminders could not be created: %v", failures),
			Error:   "partial create failure",
		}
	}
	return &models.ToolResult{Success: true, Message: params.Message}
}

// ListReminders returns the chat's reminders and their rendered lines,
// 1-indexed, in store-insertion order.
func (d *Dispatcher) ListReminders(chatID int64) ([]models.Reminder, []string, error) {
	reminders, err := d.store.ListRemindersByChat(chatID)
	if err != nil {
		slog.Error("Dispatcher.ListReminders: store query failed", "error", err, "chatID", chatID)
		return nil, nil, fmt.Errorf("failed to list reminders for chat %d: %w", chatID, err)
	}
	lines := make([]string, len(reminders))
	for i, r := range reminders {
		lines[i] = fmt.Sprintf("%d. %s — %s", i+1, r.Title, models.FormatReminderTime(r.Time))
	}
	return reminders, lines, nil
}

// SelectionButtons builds the numbered selection grid for the chat's
// reminders, rows of two, with callback data "<action>:<id>".
func (d *Dispatcher) SelectionButtons(reminders []models.Reminder, action string) [][]messaging.Button {
	buttons := make([]messaging.Button, len(reminders))
	for i, r := range reminders {
		buttons[i] = messaging.Button{
			Label: fmt.Sprintf("%d", i+1),
			Data:  fmt.Sprintf("%s:%s", action, r.ID),
		}
	}
	return messaging.ChunkButtons(buttons, buttonsPerRow)
}

// UpdateByID cancels the reminder's timer, applies the partial update, and
// re-arms the timer at the (possibly new) fire time. It always returns a
// discriminated result rather than raising.
func (d *Dispatcher) UpdateByID(ctx context.Context, params *models.UpdateByIDParams) *models.ToolResult {
	upd, err := params.Update()
	if err != nil {
		return &models.ToolResult{Success: false, Message: "That time didn't make sense to me. Please try again.", Error: err.Error()}
	}

	lock := d.locks.get(params.ID)
	lock.Lock()
	defer lock.Unlock()

	d.sched.Cancel(params.ID)

	r, err := d.store.UpdateReminder(params.ID, upd)
	if errors.Is(err, store.ErrNotFound) {
		slog.Warn("Dispatcher.UpdateByID: reminder not found", "id", params.ID)
		return &models.ToolResult{Success: false, Message: "That reminder no longer exists.", Error: err.Error()}
	}
	if err != nil {
		slog.Error("Dispatcher.UpdateByID: store update failed", "error", err, "id", params.ID)
		return &models.ToolResult{Success: false, Message: "Failed to update reminder", Error: err.Error()}
	}

	d.ArmReminder(*r)
	slog.Info("Dispatcher.UpdateByID: reminder updated", "id", r.ID, "chatID", r.ChatID)
	return &models.ToolResult{Success: true, Message: "Reminder updated successfully"}
}

// DeleteByID cancels the reminder's timer and removes the record. Used by
// the delete-confirmation flow.
func (d *Dispatcher) DeleteByID(ctx context.Context, id string) error {
	lock := d.locks.get(id)
	lock.Lock()
	defer lock.Unlock()

	d.sched.Cancel(id)

	if err := d.store.DeleteReminder(id); err != nil {
		slog.Error("Dispatcher.DeleteByID: delete failed", "error", err, "id", id)
		return err
	}
	slog.Info("Dispatcher.DeleteByID: reminder deleted", "id", id)
	return nil
}
