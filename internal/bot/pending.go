package bot

import (
	"log/slog"
	"sync"
)

// editFields is the field set chosen in the update-field-selection flow.
type editFields int

const (
	editFieldTitle editFields = 1 << iota
	editFieldTime

	editFieldBoth = editFieldTitle | editFieldTime
)

// pendingEdit records that a chat picked a reminder and field(s) to update
// and the next text turn should be routed into update_reminder_by_id.
type pendingEdit struct {
	ReminderID string
	Fields     editFields
}

// pendingStore holds explicit per-chat interaction state between a button
// press and the following text turn. At most one pending edit per chat;
// selecting again replaces the previous selection.
type pendingStore struct {
	mu    sync.Mutex
	edits map[int64]pendingEdit
}

func newPendingStore() *pendingStore {
	return &pendingStore{edits: make(map[int64]pendingEdit)}
}

// set records a pending edit for the chat.
func (p *pendingStore) set(chatID int64, edit pendingEdit) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.edits[chatID] = edit
	slog.Debug("pendingStore.set", "chatID", chatID, "reminderID", edit.ReminderID, "fields", edit.Fields)
}

// take returns and clears the chat's pending edit, if any.
func (p *pendingStore) take(chatID int64) (pendingEdit, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	edit, ok := p.edits[chatID]
	if ok {
		delete(p.edits, chatID)
	}
	return edit, ok
}

// clear drops the chat's pending edit without consuming it.
func (p *pendingStore) clear(chatID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.edits, chatID)
}
