// Package openai adapts any OpenAI-compatible chat completions endpoint
// (OpenAI, Groq, Ollama) to the llm.Completer contract.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/MikeSquared-Agency/mentor/internal/conversation"
	"github.com/MikeSquared-Agency/mentor/internal/llm"
)

var _ llm.Completer = (*Client)(nil)

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(apiKey, baseURL, model string, opts ...option.RequestOption) *Client {
	base := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		base = append(base, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(append(base, opts...)...)
	return &Client{client: &client, model: model}
}

// Complete sends the turns as a chat completion. When JSON output is
// requested the prompt is checked for the trigger token first, since the
// endpoint refuses json_object mode without it.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	turns := req.Turns
	if req.JSON {
		turns = llm.EnsureJSONTrigger(turns)
	}

	params := openai.ChatCompletionNewParams{
		Model:       model,
		Messages:    toMessages(turns),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", llm.ErrEmptyCompletion
	}
	return completion.Choices[0].Message.Content, nil
}

func toMessages(turns []conversation.Turn) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case conversation.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(t.Content))
		case conversation.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(t.Content))
		default:
			// The endpoint rejects unknown roles; anything unmapped is user speech.
			msgs = append(msgs, openai.UserMessage(t.Content))
		}
	}
	return msgs
}
