package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/roybase/remindmebot/internal/models"
	"github.com/roybase/remindmebot/internal/store"
)

func TestCreateRemindersArmsTimers(t *testing.T) {
	b := newTestBot(t)
	future := time.Now().Add(time.Hour).Format("2006-01-02T15:04:05")

	params := &models.CreateRemindersParams{
		Reminders: []models.ReminderDraft{
			{Title: "drink water", Time: future},
			{Title: "gym", Time: future},
		},
		Message: "Both scheduled!",
	}
	result := b.dispatcher.CreateReminders(context.Background(), 42, params)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Message != "Both scheduled!" {
		t.Errorf("expected model-authored message, got %q", result.Message)
	}

	reminders, err := b.store.ListRemindersByChat(42)
	if err != nil {
		t.Fatalf("ListRemindersByChat failed: %v", err)
	}
	if len(reminders) != 2 {
		t.Fatalf("expected 2 stored reminders, got %d", len(reminders))
	}
	if b.sched.Len() != 2 {
		t.Errorf("expected 2 armed timers, got %d", b.sched.Len())
	}
	for _, r := range reminders {
		if _, ok := b.sched.ArmedAt(r.ID); !ok {
			t.Errorf("reminder %s has no armed timer", r.ID)
		}
	}
}

func TestCreateRemindersPartialFailure(t *testing.T) {
	b := newTestBot(t)
	future := time.Now().Add(time.Hour).Format("2006-01-02T15:04:05")

	params := &models.CreateRemindersParams{
		Reminders: []models.ReminderDraft{
			{Title: "good", Time: future},
			{Title: "bad", Time: "whenever"},
		},
		Message: "Done!",
	}
	result := b.dispatcher.CreateReminders(context.Background(), 42, params)
	if !result.Success {
		t.Error("partial success should still report success")
	}
	if !strings.Contains(result.Message, "could not be created") {
		t.Errorf("expected failure report in message, got %q", result.Message)
	}

	reminders, _ := b.store.ListRemindersByChat(42)
	if len(reminders) != 1 || reminders[0].Title != "good" {
		t.Errorf("expected only the good draft stored, got %+v", reminders)
	}
	if b.sched.Len() != 1 {
		t.Errorf("expected 1 armed timer, got %d", b.sched.Len())
	}
}

func TestFireDeliversAndDeletes(t *testing.T) {
	b := newTestBot(t)

	r, err := b.store.CreateReminder(42, "stretch", time.Now().Add(20*time.Millisecond))
	if err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}
	b.dispatcher.ArmReminder(*r)

	if !waitFor(t, time.Second, func() bool { return len(b.msg.sentMessages()) == 1 }) {
		t.Fatal("notification was not sent")
	}
	sent := b.msg.sentMessages()[0]
	if sent.ChatID != 42 {
		t.Errorf("notification sent to chat %d, expected 42", sent.ChatID)
	}
	want := fmt.Sprintf(reminderNotificationFormat, "stretch")
	if sent.Body != want {
		t.Errorf("notification body %q, expected %q", sent.Body, want)
	}

	if _, err := b.store.GetReminder(r.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("fired reminder should be deleted, got %v", err)
	}

	// Delivery is at most once.
	time.Sleep(50 * time.Millisecond)
	if n := len(b.msg.sentMessages()); n != 1 {
		t.Errorf("expected exactly 1 notification, got %d", n)
	}
}

func TestFirePastDueImmediately(t *testing.T) {
	b := newTestBot(t)

	r, err := b.store.CreateReminder(42, "overdue", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}
	b.dispatcher.ArmReminder(*r)

	if !waitFor(t, time.Second, func() bool { return len(b.msg.sentMessages()) == 1 }) {
		t.Fatal("past-due reminder did not fire immediately")
	}
}

func TestFireSkipsRescheduledReminder(t *testing.T) {
	b := newTestBot(t)

	// The stored fire time is well in the future; a stale timer firing now
	// must not deliver or delete.
	r, err := b.store.CreateReminder(42, "moved", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}
	b.dispatcher.fire(r.ID)

	if n := len(b.msg.sentMessages()); n != 0 {
		t.Errorf("stale fire delivered %d notifications", n)
	}
	if _, err := b.store.GetReminder(r.ID); err != nil {
		t.Errorf("stale fire deleted the reminder: %v", err)
	}
}

func TestFireMissingReminder(t *testing.T) {
	b := newTestBot(t)
	b.dispatcher.fire("no-such-id")
	if n := len(b.msg.sentMessages()); n != 0 {
		t.Errorf("fire of missing reminder sent %d notifications", n)
	}
}

func TestFireSendFailureStillDeletes(t *testing.T) {
	b := newTestBot(t)
	b.msg.sendErr = errors.New("transport down")

	r, err := b.store.CreateReminder(42, "lost", time.Now())
	if err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}
	b.dispatcher.fire(r.ID)

	if _, err := b.store.GetReminder(r.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("reminder should be dropped even when delivery fails, got %v", err)
	}
}

func TestUpdateByIDRearms(t *testing.T) {
	b := newTestBot(t)

	r, err := b.store.CreateReminder(42, "call mom", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}
	b.dispatcher.ArmReminder(*r)

	newTime := time.Now().Add(3 * time.Hour).Truncate(time.Second)
	params := &models.UpdateByIDParams{
		ID:     r.ID,
		Params: models.ReminderPatch{Title: "call mom back", Time: newTime.Format("2006-01-02T15:04:05")},
	}
	result := b.dispatcher.UpdateByID(context.Background(), params)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}

	got, err := b.store.GetReminder(r.ID)
	if err != nil {
		t.Fatalf("GetReminder failed: %v", err)
	}
	if got.Title != "call mom back" {
		t.Errorf("title not updated: %q", got.Title)
	}
	if !got.Time.Equal(newTime) {
		t.Errorf("time not updated: %v != %v", got.Time, newTime)
	}

	at, ok := b.sched.ArmedAt(r.ID)
	if !ok {
		t.Fatal("timer not re-armed after update")
	}
	if !at.Equal(newTime) {
		t.Errorf("timer armed at %v, expected %v", at, newTime)
	}
	if b.sched.Len() != 1 {
		t.Errorf("expected exactly 1 armed timer, got %d", b.sched.Len())
	}
}

func TestUpdateByIDNotFound(t *testing.T) {
	b := newTestBot(t)

	params := &models.UpdateByIDParams{ID: "gone", Params: models.ReminderPatch{Title: "x"}}
	result := b.dispatcher.UpdateByID(context.Background(), params)
	if result.Success {
		t.Fatal("expected failure for missing reminder")
	}
	if result.Message != "That reminder no longer exists." {
		t.Errorf("unexpected message: %q", result.Message)
	}
	if result.Error == "" {
		t.Error("expected error detail in result")
	}
}

func TestDeleteByIDCancelsTimer(t *testing.T) {
	b := newTestBot(t)

	r, err := b.store.CreateReminder(42, "cancel me", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}
	b.dispatcher.ArmReminder(*r)

	if err := b.dispatcher.DeleteByID(context.Background(), r.ID); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	if b.sched.Len() != 0 {
		t.Errorf("timer not cancelled, %d armed", b.sched.Len())
	}
	if err := b.dispatcher.DeleteByID(context.Background(), r.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on repeat delete, got %v", err)
	}
}

func TestListRemindersLines(t *testing.T) {
	b := newTestBot(t)

	at1 := time.Now().Add(time.Hour)
	at2 := time.Now().Add(2 * time.Hour)
	b.store.CreateReminder(42, "drink water", at1)
	b.store.CreateReminder(42, "gym", at2)
	b.store.CreateReminder(99, "other chat", at1)

	reminders, lines, err := b.dispatcher.ListReminders(42)
	if err != nil {
		t.Fatalf("ListReminders failed: %v", err)
	}
	if len(reminders) != 2 || len(lines) != 2 {
		t.Fatalf("expected 2 reminders for chat 42, got %d", len(reminders))
	}
	want := fmt.Sprintf("1. drink water — %s", models.FormatReminderTime(at1))
	if lines[0] != want {
		t.Errorf("line[0] = %q, expected %q", lines[0], want)
	}
	if !strings.HasPrefix(lines[1], "2. gym") {
		t.Errorf("line[1] = %q, expected 1-indexed gym entry", lines[1])
	}
}

func TestSelectionButtons(t *testing.T) {
	b := newTestBot(t)

	at := time.Now().Add(time.Hour)
	for i := 0; i < 5; i++ {
		b.store.CreateReminder(42, fmt.Sprintf("task %d", i+1), at)
	}
	reminders, _, err := b.dispatcher.ListReminders(42)
	if err != nil {
		t.Fatalf("ListReminders failed: %v", err)
	}

	rows := b.dispatcher.SelectionButtons(reminders, actionSelect)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows for 5 buttons, got %d", len(rows))
	}
	if len(rows[0]) != 2 || len(rows[1]) != 2 || len(rows[2]) != 1 {
		t.Errorf("unexpected row sizes: %d %d %d", len(rows[0]), len(rows[1]), len(rows[2]))
	}
	first := rows[0][0]
	if first.Label != "1" {
		t.Errorf("expected numbered label, got %q", first.Label)
	}
	if first.Data != fmt.Sprintf("select:%s", reminders[0].ID) {
		t.Errorf("unexpected callback data: %q", first.Data)
	}
}
