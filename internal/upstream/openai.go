// Package upstream wraps the external text-generation model behind a small
// completion client. The model is treated as an opaque text-completion
// function: one prompt in, one message out, a single attempt per request.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Client calls an OpenAI-compatible chat-completion API with a fixed model.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// New builds a Client. baseURL may be empty to use the public OpenAI
// endpoint; timeout bounds each completion call (<= 0 disables the bound).
func New(apiKey, baseURL, model string, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

// Complete sends the compiled prompt to the model and returns its raw text.
// The call is made exactly once; transport and API failures are returned to
// the caller unretried.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
