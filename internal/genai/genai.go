// Package genai provides the language-model client used to interpret user
// messages, built on an OpenAI-compatible chat completion endpoint.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/roybase/remindmebot/internal/models"
)

// Defaults target the Gemini OpenAI-compatibility endpoint; both are
// overridable through options.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-2.5-flash"

	// DefaultRequestTimeout bounds a single completion call so a hung
	// upstream cannot block a conversational turn indefinitely.
	DefaultRequestTimeout = 60 * time.Second
)

// ToolCallResponse is the envelope returned for one completion: either plain
// assistant text, or one or more structured tool invocations (possibly with
// accompanying text).
type ToolCallResponse struct {
	Content   string
	ToolCalls []models.ToolCall
}

// HasToolCalls reports whether the model chose to invoke tools.
func (r *ToolCallResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// ClientInterface defines the completion operation the orchestrator needs.
// Tests substitute a scripted implementation.
type ClientInterface interface {
	GenerateWithTools(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, tools []openai.ChatCompletionToolParam) (*ToolCallResponse, error)
}

// Opts holds configuration for the GenAI client.
type Opts struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Option configures client creation.
type Option func(*Opts)

// WithAPIKey sets the API key for the completion endpoint.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithBaseURL overrides the completion endpoint base URL.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithModel overrides the completion model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// Client wraps the OpenAI-compatible chat completion service.
type Client struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a GenAI client from the provided options. The API key is
// required.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{
		BaseURL: DefaultBaseURL,
		Model:   DefaultModel,
		Timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key not set")
	}

	slog.Debug("genai.NewClient: creating client", "baseURL", cfg.BaseURL, "model", cfg.Model, "timeout", cfg.Timeout)
	cli := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
	)
	return &Client{client: cli, model: cfg.Model, timeout: cfg.Timeout}, nil
}

// GenerateWithTools runs one completion over the given turn list with the
// tool schema attached, tool choice left to the model. The returned envelope
// distinguishes plain text from tool invocations.
func (c *Client) GenerateWithTools(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, tools []openai.ChatCompletionToolParam) (*ToolCallResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
		Tools:    tools,
	})
	if err != nil {
		slog.Error("genai.GenerateWithTools: completion failed", "error", err)
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	msg := resp.Choices[0].Message
	out := &ToolCallResponse{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, models.ToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: models.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: json.RawMessage(tc.Function.Arguments),
			},
		})
	}

	slog.Debug("genai.GenerateWithTools: completion succeeded",
		"contentLength", len(out.Content),
		"toolCallCount", len(out.ToolCalls))
	return out, nil
}
