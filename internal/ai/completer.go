package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ChatTurn is a single dialogue turn passed to the completion service.
type ChatTurn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Complete invokes the chat completion service with a system prompt, prior
// turns and the current user message, and returns the assistant's answer.
func (c *Client) Complete(ctx context.Context, systemPrompt string, turns []ChatTurn, message string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, turn := range turns {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.config.CompletionModel,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResult
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", ErrEmptyResult
	}
	return answer, nil
}

const summaryPrompt = `Progressively summarize the conversation below, building on the previous summary. Preserve facts, names, numbers and decisions so that later questions about earlier context can still be answered.

Previous summary:
%s

New turns:
%s

Provide only the new summary without any explanations or meta-commentary.`

// Summarize condenses evicted dialogue turns into a running summary.
// The previous summary may be empty on the first pass.
func (c *Client) Summarize(ctx context.Context, previous string, turns []ChatTurn) (string, error) {
	if previous == "" {
		previous = "(none)"
	}

	var sb strings.Builder
	for _, turn := range turns {
		sb.WriteString(turn.Role)
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.config.CompletionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(summaryPrompt, previous, sb.String()),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarization request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResult
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", ErrEmptyResult
	}
	return summary, nil
}
