// Package conversation provides the session registry: named conversations
// with append-only turn history, document scope, and a token-bounded
// summarizing memory buffer.
package conversation

import "context"

// Role represents the role of a turn's author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single dialogue turn.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Summarizer condenses evicted dialogue turns into a running summary.
// Implemented by the external completion service adapter.
type Summarizer interface {
	Summarize(ctx context.Context, previous string, evicted []Turn) (string, error)
}

// TokenCounter estimates the language-model token count of a string.
type TokenCounter interface {
	CountTokens(text string) int
}

// SimpleTokenCounter provides a rough token estimation.
// Approximately 4 characters per token for English text.
type SimpleTokenCounter struct{}

func (SimpleTokenCounter) CountTokens(text string) int {
	return len(text) / 4
}
