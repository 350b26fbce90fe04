package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roybase/remindmebot/internal/messaging"
	"github.com/roybase/remindmebot/internal/store"
)

// Callback actions, encoded in button data as "<action>:<id>".
const (
	actionSelect        = "select"
	actionConfirmDelete = "confirmDelete"
	actionCancelDelete  = "cancelDelete"
	actionEditSelect    = "editSelect"
	actionEditTitle     = "editTitle"
	actionEditTime      = "editTime"
	actionEditBoth      = "editBoth"
	actionEditCancel    = "editCancel"
)

// CallbackRouter is the interaction state machine: it drives the
// delete-confirmation and update-field-selection flows from button presses,
// recording explicit per-chat pending state for the edit flows.
type CallbackRouter struct {
	dispatcher *Dispatcher
	msg        messaging.Service
	pending    *pendingStore
}

// NewCallbackRouter creates a callback router.
func NewCallbackRouter(dispatcher *Dispatcher, msg messaging.Service, pending *pendingStore) *CallbackRouter {
	return &CallbackRouter{dispatcher: dispatcher, msg: msg, pending: pending}
}

// Handle processes one button press to completion.
func (c *CallbackRouter) Handle(ctx context.Context, cb messaging.Callback) {
	action, id := splitCallbackData(cb.Data)
	slog.Debug("CallbackRouter.Handle", "chatID", cb.ChatID, "action", action, "id", id)

	switch action {
	case actionSelect:
		c.showDeleteConfirmation(ctx, cb, id)
	case actionConfirmDelete:
		c.confirmDelete(ctx, cb, id)
	case actionCancelDelete:
		c.edit(ctx, cb, "❌ Deletion cancelled.", nil)
		c.answer(ctx, cb, "Cancelled")
	case actionEditSelect:
		c.showEditFieldMenu(ctx, cb, id)
	case actionEditTitle:
		c.beginEdit(ctx, cb, id, editFieldTitle, "Okay! What is the new title?")
	case actionEditTime:
		c.beginEdit(ctx, cb, id, editFieldTime, "Okay! What is the new time?")
	case actionEditBoth:
		c.beginEdit(ctx, cb, id, editFieldBoth, "Okay! Tell me the new title and time.")
	case actionEditCancel:
		c.pending.clear(cb.ChatID)
		c.edit(ctx, cb, "❌ Updating cancelled.", nil)
		c.answer(ctx, cb, "Cancelled")
	default:
		slog.Warn("CallbackRouter.Handle: unknown callback action", "action", action, "chatID", cb.ChatID)
		c.answer(ctx, cb, "")
	}
}

// showDeleteConfirmation replaces the selection list with a yes/no prompt.
func (c *CallbackRouter) showDeleteConfirmation(ctx context.Context, cb messaging.Callback, id string) {
	rows := [][]messaging.Button{
		{{Label: "Yes, delete", Data: fmt.Sprintf("%s:%s", actionConfirmDelete, id)}},
		{{Label: "Cancel", Data: fmt.Sprintf("%s:%s", actionCancelDelete, id)}},
	}
	c.edit(ctx, cb, "Are you sure you want to delete this reminder?", rows)
	c.answer(ctx, cb, "")
}

// confirmDelete cancels the timer, removes the record, and reports the
// outcome explicitly; delete must never fail silently.
func (c *CallbackRouter) confirmDelete(ctx context.Context, cb messaging.Callback, id string) {
	err := c.dispatcher.DeleteByID(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.edit(ctx, cb, "That reminder is already gone.", nil)
		c.answer(ctx, cb, "")
	case err != nil:
		c.edit(ctx, cb, "⚠️ Failed to delete the reminder. Please try again.", nil)
		c.answer(ctx, cb, "")
	default:
		c.edit(ctx, cb, "✅ Reminder deleted successfully!", nil)
		c.answer(ctx, cb, "Deleted")
	}
}

// showEditFieldMenu offers the three field choices plus cancel.
func (c *CallbackRouter) showEditFieldMenu(ctx context.Context, cb messaging.Callback, id string) {
	rows := [][]messaging.Button{
		{{Label: "Title", Data: fmt.Sprintf("%s:%s", actionEditTitle, id)}},
		{{Label: "Time", Data: fmt.Sprintf("%s:%s", actionEditTime, id)}},
		{{Label: "Title + Time", Data: fmt.Sprintf("%s:%s", actionEditBoth, id)}},
		{{Label: "Cancel", Data: actionEditCancel}},
	}
	c.edit(ctx, cb, "What do you want to update?", rows)
	c.answer(ctx, cb, "")
}

// beginEdit prompts for the new value(s) and records the pending edit so the
// chat's next text turn is routed into update_reminder_by_id.
func (c *CallbackRouter) beginEdit(ctx context.Context, cb messaging.Callback, id string, fields editFields, prompt string) {
	c.pending.set(cb.ChatID, pendingEdit{ReminderID: id, Fields: fields})
	c.edit(ctx, cb, prompt, nil)
	c.answer(ctx, cb, "")
}

func (c *CallbackRouter) edit(ctx context.Context, cb messaging.Callback, body string, rows [][]messaging.Button) {
	if err := c.msg.EditMessage(ctx, cb.ChatID, cb.MessageID, body, rows); err != nil {
		slog.Error("CallbackRouter: edit message failed", "error", err, "chatID", cb.ChatID, "messageID", cb.MessageID)
	}
}

func (c *CallbackRouter) answer(ctx context.Context, cb messaging.Callback, toast string) {
	if err := c.msg.AnswerCallback(ctx, cb.ID, toast); err != nil {
		slog.Error("CallbackRouter: answer callback failed", "error", err, "chatID", cb.ChatID)
	}
}

// splitCallbackData parses "<action>:<id>"; actions without an id (such as
// editCancel) yield an empty id.
func splitCallbackData(data string) (action, id string) {
	action, id, _ = strings.Cut(data, ":")
	return action, id
}
