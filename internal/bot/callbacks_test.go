package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/roybase/remindmebot/internal/messaging"
	"github.com/roybase/remindmebot/internal/store"
)

func testCallback(data string) messaging.Callback {
	return messaging.Callback{ID: "cb-1", ChatID: 42, MessageID: 7, Data: data}
}

func TestSelectShowsDeleteConfirmation(t *testing.T) {
	b := newTestBot(t)
	b.router.Handle(context.Background(), testCallback("select:r1"))

	edits := b.msg.editedMessages()
	if len(edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(edits))
	}
	e := edits[0]
	if e.ChatID != 42 || e.MessageID != 7 {
		t.Errorf("edit targeted wrong message: %+v", e)
	}
	if e.Body != "Are you sure you want to delete this reminder?" {
		t.Errorf("unexpected confirmation text: %q", e.Body)
	}
	if len(e.Rows) != 2 {
		t.Fatalf("expected 2 button rows, got %d", len(e.Rows))
	}
	if e.Rows[0][0].Data != "confirmDelete:r1" || e.Rows[1][0].Data != "cancelDelete:r1" {
		t.Errorf("unexpected button data: %q / %q", e.Rows[0][0].Data, e.Rows[1][0].Data)
	}
}

func TestConfirmDeleteSuccess(t *testing.T) {
	b := newTestBot(t)
	r, err := b.store.CreateReminder(42, "doomed", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}
	b.dispatcher.ArmReminder(*r)

	b.router.Handle(context.Background(), testCallback(fmt.Sprintf("confirmDelete:%s", r.ID)))

	if _, err := b.store.GetReminder(r.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("reminder not deleted: %v", err)
	}
	if b.sched.Len() != 0 {
		t.Errorf("timer not cancelled, %d armed", b.sched.Len())
	}

	edits := b.msg.editedMessages()
	if len(edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(edits))
	}
	if edits[0].Body != "✅ Reminder deleted successfully!" {
		t.Errorf("unexpected outcome text: %q", edits[0].Body)
	}
	if len(edits[0].Rows) != 0 {
		t.Error("outcome message should have no keyboard")
	}
}

func TestConfirmDeleteAlreadyGone(t *testing.T) {
	b := newTestBot(t)
	b.router.Handle(context.Background(), testCallback("confirmDelete:vanished"))

	edits := b.msg.editedMessages()
	if len(edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(edits))
	}
	if edits[0].Body != "That reminder is already gone." {
		t.Errorf("unexpected outcome text: %q", edits[0].Body)
	}
}

func TestCancelDelete(t *testing.T) {
	b := newTestBot(t)
	r, _ := b.store.CreateReminder(42, "survivor", time.Now().Add(time.Hour))

	b.router.Handle(context.Background(), testCallback(fmt.Sprintf("cancelDelete:%s", r.ID)))

	if _, err := b.store.GetReminder(r.ID); err != nil {
		t.Errorf("cancel must not delete the reminder: %v", err)
	}
	edits := b.msg.editedMessages()
	if len(edits) != 1 || edits[0].Body != "❌ Deletion cancelled." {
		t.Errorf("unexpected edits: %+v", edits)
	}
}

func TestEditSelectShowsFieldMenu(t *testing.T) {
	b := newTestBot(t)
	b.router.Handle(context.Background(), testCallback("editSelect:r1"))

	edits := b.msg.editedMessages()
	if len(edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(edits))
	}
	e := edits[0]
	if e.Body != "What do you want to update?" {
		t.Errorf("unexpected menu text: %q", e.Body)
	}
	if len(e.Rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(e.Rows))
	}
	wantData := []string{"editTitle:r1", "editTime:r1", "editBoth:r1", "editCancel"}
	for i, want := range wantData {
		if e.Rows[i][0].Data != want {
			t.Errorf("row %d data = %q, expected %q", i, e.Rows[i][0].Data, want)
		}
	}
}

func TestEditTitleSetsPending(t *testing.T) {
	b := newTestBot(t)
	b.router.Handle(context.Background(), testCallback("editTitle:r1"))

	edit, ok := b.pending.take(42)
	if !ok {
		t.Fatal("expected pending edit for chat 42")
	}
	if edit.ReminderID != "r1" || edit.Fields != editFieldTitle {
		t.Errorf("unexpected pending edit: %+v", edit)
	}

	edits := b.msg.editedMessages()
	if len(edits) != 1 || edits[0].Body != "Okay! What is the new title?" {
		t.Errorf("unexpected prompt: %+v", edits)
	}
}

func TestEditFieldVariants(t *testing.T) {
	cases := []struct {
		data   string
		fields editFields
		prompt string
	}{
		{"editTime:r1", editFieldTime, "Okay! What is the new time?"},
		{"editBoth:r1", editFieldBoth, "Okay! Tell me the new title and time."},
	}
	for _, c := range cases {
		b := newTestBot(t)
		b.router.Handle(context.Background(), testCallback(c.data))

		edit, ok := b.pending.take(42)
		if !ok {
			t.Fatalf("%s: expected pending edit", c.data)
		}
		if edit.Fields != c.fields {
			t.Errorf("%s: fields = %v, expected %v", c.data, edit.Fields, c.fields)
		}
		edits := b.msg.editedMessages()
		if len(edits) != 1 || edits[0].Body != c.prompt {
			t.Errorf("%s: unexpected prompt: %+v", c.data, edits)
		}
	}
}

func TestEditCancelClearsPending(t *testing.T) {
	b := newTestBot(t)
	b.pending.set(42, pendingEdit{ReminderID: "r1", Fields: editFieldTitle})

	b.router.Handle(context.Background(), testCallback("editCancel"))

	if _, ok := b.pending.take(42); ok {
		t.Error("pending edit not cleared")
	}
	edits := b.msg.editedMessages()
	if len(edits) != 1 || edits[0].Body != "❌ Updating cancelled." {
		t.Errorf("unexpected edits: %+v", edits)
	}
}

func TestRepeatSelectionReplacesPending(t *testing.T) {
	b := newTestBot(t)
	b.router.Handle(context.Background(), testCallback("editTitle:r1"))
	b.router.Handle(context.Background(), testCallback("editTime:r2"))

	edit, ok := b.pending.take(42)
	if !ok {
		t.Fatal("expected pending edit")
	}
	if edit.ReminderID != "r2" || edit.Fields != editFieldTime {
		t.Errorf("later selection should win: %+v", edit)
	}
}

func TestUnknownCallbackAcknowledged(t *testing.T) {
	b := newTestBot(t)
	b.router.Handle(context.Background(), testCallback("bogus:xyz"))

	if len(b.msg.editedMessages()) != 0 {
		t.Error("unknown action should not edit the message")
	}
	b.msg.mu.Lock()
	answered := len(b.msg.answered)
	b.msg.mu.Unlock()
	if answered != 1 {
		t.Errorf("expected callback acknowledged, got %d answers", answered)
	}
}
