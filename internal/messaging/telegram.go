// Package messaging provides chat transports for RemindMeBot.
//
// This file implements the Telegram transport on top of the Bot API
// long-polling client.
package messaging

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DefaultPollTimeout is the long-poll timeout in seconds for GetUpdates.
const DefaultPollTimeout = 60

// TelegramOpts holds configuration for the Telegram service.
type TelegramOpts struct {
	Token       string
	PollTimeout int
}

// TelegramOption configures Telegram service creation.
type TelegramOption func(*TelegramOpts)

// WithToken sets the bot token.
func WithToken(token string) TelegramOption {
	return func(o *TelegramOpts) { o.Token = token }
}

// WithPollTimeout sets the long-poll timeout in seconds.
func WithPollTimeout(seconds int) TelegramOption {
	return func(o *TelegramOpts) { o.PollTimeout = seconds }
}

// TelegramService implements Service over the Telegram Bot API.
type TelegramService struct {
	bot         *tgbotapi.BotAPI
	pollTimeout int
	events      chan Event
}

// NewTelegramService creates and authenticates a Telegram transport.
func NewTelegramService(opts ...TelegramOption) (*TelegramService, error) {
	cfg := TelegramOpts{PollTimeout: DefaultPollTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token not set")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		slog.Error("TelegramService: failed to create bot client", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	slog.Info("TelegramService: authenticated", "username", bot.Self.UserName)

	return &TelegramService{
		bot:         bot,
		pollTimeout: cfg.PollTimeout,
		events:      make(chan Event, 16),
	}, nil
}

// Start begins long-polling for updates and converting them into Events.
func (t *TelegramService) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.pollTimeout
	updates := t.bot.GetUpdatesChan(u)

	go func() {
		defer close(t.events)
		for {
			select {
			case <-ctx.Done():
				slog.Info("TelegramService: context cancelled, stopping update loop")
				return
			case update, ok := <-updates:
				if !ok {
					slog.Info("TelegramService: update channel closed")
					return
				}
				if ev, ok := convertUpdate(update); ok {
					t.events <- ev
				}
			}
		}
	}()

	slog.Info("TelegramService: started", "pollTimeout", t.pollTimeout)
	return nil
}

// convertUpdate maps a Telegram update onto a transport event.
func convertUpdate(update tgbotapi.Update) (Event, bool) {
	if update.CallbackQuery != nil {
		cq := update.CallbackQuery
		if cq.Message == nil {
			slog.Warn("TelegramService: callback without originating message, dropping", "data", cq.Data)
			return Event{}, false
		}
		return Event{Callback: &Callback{
			ID:        cq.ID,
			ChatID:    cq.Message.Chat.ID,
			MessageID: cq.Message.MessageID,
			Data:      cq.Data,
		}}, true
	}
	if update.Message != nil && update.Message.Text != "" {
		senderName := ""
		if update.Message.From != nil {
			senderName = update.Message.From.FirstName
		}
		return Event{Text: &TextMessage{
			ChatID:     update.Message.Chat.ID,
			SenderName: senderName,
			Text:       update.Message.Text,
		}}, true
	}
	return Event{}, false
}

// Stop halts update delivery.
func (t *TelegramService) Stop() {
	slog.Debug("TelegramService: stopping")
	t.bot.StopReceivingUpdates()
}

// Events returns the inbound event channel.
func (t *TelegramService) Events() <-chan Event {
	return t.events
}

// SendMessage sends a plain text message.
func (t *TelegramService) SendMessage(ctx context.Context, chatID int64, body string) error {
	msg := tgbotapi.NewMessage(chatID, body)
	if _, err := t.bot.Send(msg); err != nil {
		slog.Error("TelegramService.SendMessage failed", "error", err, "chatID", chatID)
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	slog.Debug("TelegramService.SendMessage succeeded", "chatID", chatID, "length", len(body))
	return nil
}

// SendMessageWithButtons sends a message with an inline keyboard.
func (t *TelegramService) SendMessageWithButtons(ctx context.Context, chatID int64, body string, rows [][]Button) error {
	msg := tgbotapi.NewMessage(chatID, body)
	msg.ReplyMarkup = toInlineKeyboard(rows)
	if _, err := t.bot.Send(msg); err != nil {
		slog.Error("TelegramService.SendMessageWithButtons failed", "error", err, "chatID", chatID)
		return fmt.Errorf("failed to send keyboard message to chat %d: %w", chatID, err)
	}
	slog.Debug("TelegramService.SendMessageWithButtons succeeded", "chatID", chatID, "rows", len(rows))
	return nil
}

// EditMessage replaces an existing message's text and keyboard.
func (t *TelegramService) EditMessage(ctx context.Context, chatID int64, messageID int, body string, rows [][]Button) error {
	var edit tgbotapi.Chattable
	if len(rows) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, body, toInlineKeyboard(rows))
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, body)
	}
	if _, err := t.bot.Send(edit); err != nil {
		slog.Error("TelegramService.EditMessage failed", "error", err, "chatID", chatID, "messageID", messageID)
		return fmt.Errorf("failed to edit message %d in chat %d: %w", messageID, chatID, err)
	}
	slog.Debug("TelegramService.EditMessage succeeded", "chatID", chatID, "messageID", messageID)
	return nil
}

// AnswerCallback acknowledges a button press.
func (t *TelegramService) AnswerCallback(ctx context.Context, callbackID, toast string) error {
	cb := tgbotapi.NewCallback(callbackID, toast)
	if _, err := t.bot.Request(cb); err != nil {
		slog.Error("TelegramService.AnswerCallback failed", "error", err)
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

// toInlineKeyboard converts transport button rows into a Telegram keyboard.
func toInlineKeyboard(rows [][]Button) tgbotapi.InlineKeyboardMarkup {
	var kbRows [][]tgbotapi.InlineKeyboardButton
	for _, row := range rows {
		var kbRow []tgbotapi.InlineKeyboardButton
		for _, b := range row {
			kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		kbRows = append(kbRows, kbRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...)
}
