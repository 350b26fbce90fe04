// Package messaging provides the chat transport abstraction for RemindMeBot.
//
// The bot core only depends on the Service interface; the Telegram
// implementation lives alongside it in this package.
package messaging

import "context"

// Button is one inline keyboard button.
type Button struct {
	Label string // user-visible label
	Data  string // callback payload, "<action>:<id>" convention
}

// TextMessage is an inbound free-text message.
type TextMessage struct {
	ChatID     int64
	SenderName string
	Text       string
}

// Callback is an inbound button press.
type Callback struct {
	ID        string // transport callback identifier, used to acknowledge
	ChatID    int64
	MessageID int // message carrying the pressed keyboard
	Data      string
}

// Event is one inbound transport event. Exactly one field is non-nil.
type Event struct {
	Text     *TextMessage
	Callback *Callback
}

// Service defines a pluggable chat transport.
type Service interface {
	// SendMessage sends a plain text reply to a chat.
	SendMessage(ctx context.Context, chatID int64, body string) error

	// SendMessageWithButtons sends a text reply with an inline button grid.
	SendMessageWithButtons(ctx context.Context, chatID int64, body string, rows [][]Button) error

	// EditMessage replaces an existing message's text and keyboard.
	// Empty rows removes the keyboard.
	EditMessage(ctx context.Context, chatID int64, messageID int, body string, rows [][]Button) error

	// AnswerCallback acknowledges a button press, optionally with a toast.
	AnswerCallback(ctx context.Context, callbackID, toast string) error

	// Start begins receiving transport events.
	Start(ctx context.Context) error

	// Stop stops event delivery and closes the event channel.
	Stop()

	// Events returns the inbound event channel.
	Events() <-chan Event
}

// ChunkButtons groups buttons into rows of at most size per row.
func ChunkButtons(buttons []Button, size int) [][]Button {
	if size <= 0 {
		size = 1
	}
	var rows [][]Button
	for i := 0; i < len(buttons); i += size {
		end := i + size
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}
	return rows
}
