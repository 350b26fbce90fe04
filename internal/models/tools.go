// Package models defines tool structures for LLM function calling.
package models

import (
	"encoding/json"
	"fmt"
)

// Tool function names exposed to the language model.
const (
	ToolCreateReminders    = "create_reminders"
	ToolListReminders      = "list_reminders"
	ToolRequestDelete      = "request_delete"
	ToolRequestUpdate      = "request_update"
	ToolUpdateReminderByID = "update_reminder_by_id"
)

// ToolCall represents an LLM tool function call.
type ToolCall struct {
	ID       string       `json:"id"`       // Tool call ID from the completion response
	Type     string       `json:"type"`     // Always "function"
	Function FunctionCall `json:"function"` // Function details
}

// FunctionCall represents the function details within a tool call.
type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult is the discriminated outcome of executing a tool operation.
// Dispatch operations return a ToolResult rather than raising, so the
// conversational layer can always produce a user-facing message.
type ToolResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`         // Human-readable result message
	Error   string `json:"error,omitempty"` // Error detail when Success is false
}

// ReminderDraft is a single reminder requested by the create_reminders tool.
type ReminderDraft struct {
	Title string `json:"title"`
	Time  string `json:"time"` // ISO timestamp string, parsed via ParseReminderTime
}

// CreateRemindersParams are the arguments of the create_reminders tool.
type CreateRemindersParams struct {
	Reminders []ReminderDraft `json:"reminders"`
	Message   string          `json:"message"` // Model-authored confirmation shown to the user
}

// Validate ensures the create parameters carry at least one well-formed draft.
func (p *CreateRemindersParams) Validate() error {
	if len(p.Reminders) == 0 {
		return fmt.Errorf("no reminders provided")
	}
	for i, d := range p.Reminders {
		if d.Title == "" {
			return fmt.Errorf("reminder %d: title is required", i+1)
		}
		if _, err := ParseReminderTime(d.Time); err != nil {
			return fmt.Errorf("reminder %d: %w", i+1, err)
		}
	}
	return nil
}

// ChatScopedParams are the arguments of the list_reminders, request_delete
// and request_update tools, which all operate on a whole chat.
type ChatScopedParams struct {
	ChatID int64 `json:"chat_id"`
}

// Validate ensures a chat identifier was supplied.
func (p *ChatScopedParams) Validate() error {
	if p.ChatID == 0 {
		return fmt.Errorf("chat_id is required")
	}
	return nil
}

// ReminderPatch is the partial field set of the update_reminder_by_id tool.
type ReminderPatch struct {
	Title string `json:"title,omitempty"`
	Time  string `json:"time,omitempty"`
}

// UpdateByIDParams are the arguments of the update_reminder_by_id tool.
type UpdateByIDParams struct {
	ID     string        `json:"id"`
	Params ReminderPatch `json:"params"`
}

// Validate ensures the update targets a reminder and changes at least one field.
func (p *UpdateByIDParams) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}
	if p.Params.Title == "" && p.Params.Time == "" {
		return fmt.Errorf("at least one of title or time is required")
	}
	if p.Params.Time != "" {
		if _, err := ParseReminderTime(p.Params.Time); err != nil {
			return err
		}
	}
	return nil
}

// Update converts the patch into a store-level partial update.
func (p *UpdateByIDParams) Update() (ReminderUpdate, error) {
	var upd ReminderUpdate
	if p.Params.Title != "" {
		title := p.Params.Title
		upd.Title = &title
	}
	if p.Params.Time != "" {
		t, err := ParseReminderTime(p.Params.Time)
		if err != nil {
			return upd, err
		}
		upd.Time = &t
	}
	return upd, nil
}

// ParseCreateRemindersParams parses and validates create_reminders arguments.
func (fc *FunctionCall) ParseCreateRemindersParams() (*CreateRemindersParams, error) {
	if fc.Name != ToolCreateReminders {
		return nil, fmt.Errorf("function %s is not %s", fc.Name, ToolCreateReminders)
	}
	var params CreateRemindersParams
	if err := json.Unmarshal(fc.Arguments, &params); err != nil {
		return nil, fmt.Errorf("failed to parse create_reminders parameters: %w", err)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid create_reminders parameters: %w", err)
	}
	return &params, nil
}

// ParseChatScopedParams parses and validates arguments of the chat-scoped tools.
func (fc *FunctionCall) ParseChatScopedParams() (*ChatScopedParams, error) {
	var params ChatScopedParams
	if err := json.Unmarshal(fc.Arguments, &params); err != nil {
		return nil, fmt.Errorf("failed to parse %s parameters: %w", fc.Name, err)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s parameters: %w", fc.Name, err)
	}
	return &params, nil
}

// ParseUpdateByIDParams parses and validates update_reminder_by_id arguments.
func (fc *FunctionCall) ParseUpdateByIDParams() (*UpdateByIDParams, error) {
	if fc.Name != ToolUpdateReminderByID {
		return nil, fmt.Errorf("function %s is not %s", fc.Name, ToolUpdateReminderByID)
	}
	var params UpdateByIDParams
	if err := json.Unmarshal(fc.Arguments, &params); err != nil {
		return nil, fmt.Errorf("failed to parse update_reminder_by_id parameters: %w", err)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid update_reminder_by_id parameters: %w", err)
	}
	return &params, nil
}
