// Package ai wraps an OpenAI-compatible chat API for feedback digests.
package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Client talks to any OpenAI-compatible endpoint (OpenAI, Ollama, vLLM).
type Client struct {
	api   *openai.Client
	model string
}

// New creates a summarizer client. baseURL may be empty for the default
// OpenAI endpoint.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

const summarySystemPrompt = `You summarize anonymous workplace feedback for managers.
Group the messages into recurring themes, note how often each theme appears,
and keep the tone neutral. Never quote a message verbatim and never speculate
about who wrote it. Reply in at most five short bullet points.`

// SummarizeFeedback condenses channel messages into a short digest.
func (c *Client) SummarizeFeedback(ctx context.Context, channelName string, messages []string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Channel: %s\n\nMessages:\n", channelName)
	for _, m := range messages {
		b.WriteString("- ")
		b.WriteString(m)
		b.WriteString("\n")
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: b.String()},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("summarizer API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("summarizer returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
