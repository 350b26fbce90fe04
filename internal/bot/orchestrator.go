package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/roybase/remindmebot/internal/genai"
	"github.com/roybase/remindmebot/internal/messaging"
	"github.com/roybase/remindmebot/internal/models"
)

// apologyReply is sent when a conversational turn fails unexpectedly.
const apologyReply = "Something went wrong! Please try again."

// Orchestrator runs the request/response cycle for inbound text: it builds
// the per-chat turn list, invokes the language model with the tool schema,
// and routes the response either as direct text or into the dispatcher.
type Orchestrator struct {
	genai      genai.ClientInterface
	msg        messaging.Service
	dispatcher *Dispatcher
	convs      *conversationStore
	pending    *pendingStore
}

// NewOrchestrator creates an orchestrator over the given collaborators.
func NewOrchestrator(client genai.ClientInterface, msg messaging.Service, dispatcher *Dispatcher, convs *conversationStore, pending *pendingStore) *Orchestrator {
	return &Orchestrator{
		genai:      client,
		msg:        msg,
		dispatcher: dispatcher,
		convs:      convs,
		pending:    pending,
	}
}

// HandleStart replies to the /start command.
func (o *Orchestrator) HandleStart(ctx context.Context, m messaging.TextMessage) {
	o.reply(ctx, m.ChatID, greeting(m.SenderName))
}

// HandleText processes one inbound text message to completion.
func (o *Orchestrator) HandleText(ctx context.Context, m messaging.TextMessage) {
	slog.Debug("Orchestrator.HandleText", "chatID", m.ChatID, "sender", m.SenderName, "length", len(m.Text))

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt(m.SenderName, m.ChatID, time.Now())),
	}

	// A pending edit selection (set by the button flow) is consumed here and
	// turned into a deterministic assistant instruction, so the model routes
	// this turn into update_reminder_by_id instead of starting fresh.
	if edit, ok := o.pending.take(m.ChatID); ok {
		slog.Debug("Orchestrator.HandleText: continuing edit flow", "chatID", m.ChatID, "reminderID", edit.ReminderID)
		messages = append(messages, openai.AssistantMessage(editInstruction(edit)))
	}

	messages = append(messages, o.convs.turns(m.ChatID)...)
	messages = append(messages, openai.UserMessage(m.Text))
	o.convs.appendUser(m.ChatID, m.Text)

	resp, err := o.genai.GenerateWithTools(ctx, messages, toolDefinitions())
	if err != nil {
		slog.Error("Orchestrator.HandleText: completion failed", "error", err, "chatID", m.ChatID)
		o.reply(ctx, m.ChatID, apologyReply)
		return
	}

	if !resp.HasToolCalls() {
		o.convs.appendAssistant(m.ChatID, resp.Content)
		o.reply(ctx, m.ChatID, resp.Content)
		return
	}

	// A tool-driven turn closes the exchange: the chat's context is reset
	// even if one of the calls fails mid-batch.
	defer o.convs.reset(m.ChatID)

	for _, call := range resp.ToolCalls {
		o.dispatchToolCall(ctx, m.ChatID, call)
	}
}

// dispatchToolCall executes one tool invocation and renders its result to
// the user. Each call in a batch is reported individually.
func (o *Orchestrator) dispatchToolCall(ctx context.Context, chatID int64, call models.ToolCall) {
	slog.Info("Orchestrator.dispatchToolCall", "chatID", chatID, "tool", call.Function.Name, "toolCallID", call.ID)

	switch call.Function.Name {
	case models.ToolCreateReminders:
		params, err := call.Function.ParseCreateRemindersParams()
		if err != nil {
			slog.Warn("Orchestrator: bad create_reminders arguments", "error", err, "chatID", chatID)
			o.reply(ctx, chatID, "I couldn't work out that reminder. Please give me a title and a time.")
			return
		}
		result := o.dispatcher.CreateReminders(ctx, chatID, params)
		o.reply(ctx, chatID, result.Message)

	case models.ToolListReminders:
		o.requireChatScope(call, chatID)
		_, lines, err := o.dispatcher.ListReminders(chatID)
		if err != nil {
			o.reply(ctx, chatID, apologyReply)
			return
		}
		if len(lines) == 0 {
			o.reply(ctx, chatID, "You have no reminders!")
			return
		}
		o.reply(ctx, chatID, "Your reminders:\n\n"+strings.Join(lines, "\n"))

	case models.ToolRequestDelete:
		o.requireChatScope(call, chatID)
		o.replySelection(ctx, chatID, actionSelect, "You have no reminders to delete!")

	case models.ToolRequestUpdate:
		o.requireChatScope(call, chatID)
		o.replySelection(ctx, chatID, actionEditSelect, "You have no reminders to update!")

	case models.ToolUpdateReminderByID:
		params, err := call.Function.ParseUpdateByIDParams()
		if err != nil {
			slog.Warn("Orchestrator: bad update_reminder_by_id arguments", "error", err, "chatID", chatID)
			o.reply(ctx, chatID, "I couldn't work out that update. Please try again.")
			return
		}
		result := o.dispatcher.UpdateByID(ctx, params)
		o.reply(ctx, chatID, result.Message)

	default:
		slog.Warn("Orchestrator: unknown tool call", "tool", call.Function.Name, "chatID", chatID)
		o.reply(ctx, chatID, apologyReply)
	}
}

// replySelection lists the chat's reminders with a numbered button grid.
func (o *Orchestrator) replySelection(ctx context.Context, chatID int64, action, emptyReply string) {
	reminders, lines, err := o.dispatcher.ListReminders(chatID)
	if err != nil {
		o.reply(ctx, chatID, apologyReply)
		return
	}
	if len(reminders) == 0 {
		o.reply(ctx, chatID, emptyReply)
		return
	}
	rows := o.dispatcher.SelectionButtons(reminders, action)
	if err := o.msg.SendMessageWithButtons(ctx, chatID, strings.Join(lines, "\n"), rows); err != nil {
		slog.Error("Orchestrator.replySelection: send failed", "error", err, "chatID", chatID)
	}
}

// requireChatScope logs when the model supplied a chat_id differing from the
// inbound chat. Operations are always scoped to the chat the message came
// from; the model's argument is advisory only.
func (o *Orchestrator) requireChatScope(call models.ToolCall, chatID int64) {
	params, err := call.Function.ParseChatScopedParams()
	if err != nil {
		slog.Warn("Orchestrator: bad chat-scoped arguments, using inbound chat", "error", err, "tool", call.Function.Name, "chatID", chatID)
		return
	}
	if params.ChatID != chatID {
		slog.Warn("Orchestrator: model-supplied chat_id ignored", "tool", call.Function.Name, "suppliedChatID", params.ChatID, "chatID", chatID)
	}
}

func (o *Orchestrator) reply(ctx context.Context, chatID int64, body string) {
	if body == "" {
		return
	}
	if err := o.msg.SendMessage(ctx, chatID, body); err != nil {
		slog.Error("Orchestrator.reply: send failed", "error", err, "chatID", chatID)
	}
}
