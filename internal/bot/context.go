package bot

import (
	"log/slog"
	"sync"

	"github.com/openai/openai-go"
)

// maxContextTurns bounds the retained history per chat to keep prompts small.
const maxContextTurns = 30

// conversationStore keeps conversation context keyed by chat ID, so turns
// from different chats never interleave. The system prompt is not stored; it
// is rebuilt fresh on every turn with the current timestamp.
type conversationStore struct {
	mu    sync.Mutex
	chats map[int64][]openai.ChatCompletionMessageParamUnion
}

func newConversationStore() *conversationStore {
	return &conversationStore{chats: make(map[int64][]openai.ChatCompletionMessageParamUnion)}
}

// appendUser records a user turn.
func (c *conversationStore) appendUser(chatID int64, text string) {
	c.appendTurn(chatID, openai.UserMessage(text))
}

// appendAssistant records an assistant turn.
func (c *conversationStore) appendAssistant(chatID int64, text string) {
	c.appendTurn(chatID, openai.AssistantMessage(text))
}

func (c *conversationStore) appendTurn(chatID int64, msg openai.ChatCompletionMessageParamUnion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	turns := append(c.chats[chatID], msg)
	if len(turns) > maxContextTurns {
		turns = turns[len(turns)-maxContextTurns:]
	}
	c.chats[chatID] = turns
}

// turns returns a copy of the chat's retained history.
func (c *conversationStore) turns(chatID int64) []openai.ChatCompletionMessageParamUnion {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]openai.ChatCompletionMessageParamUnion, len(c.chats[chatID]))
	copy(out, c.chats[chatID])
	return out
}

// reset discards the chat's history. Called after a tool-driven turn
// completes: that exchange is conversationally closed.
func (c *conversationStore) reset(chatID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.chats, chatID)
	slog.Debug("conversationStore.reset", "chatID", chatID)
}
