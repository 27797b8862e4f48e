package conversation

import (
	"context"
	"fmt"
)

// Memory is a token-budgeted eviction buffer over the dialogue.
//
// Every appended turn increases the estimated token count. When the estimate
// exceeds the budget, the oldest buffered turns are collapsed through one
// summarization call into the running summary and the estimate is recomputed
// against the shorter representation. The display history lives elsewhere
// and is never evicted.
type Memory struct {
	maxTokens  int
	counter    TokenCounter
	summarizer Summarizer

	summary string
	buffer  []Turn
}

// NewMemory creates a Memory with the given token budget.
func NewMemory(maxTokens int, summarizer Summarizer) *Memory {
	return &Memory{
		maxTokens:  maxTokens,
		counter:    SimpleTokenCounter{},
		summarizer: summarizer,
	}
}

// Append adds a turn to the buffer, summarizing the oldest content when the
// token budget is exceeded. On summarizer failure the memory is left
// unchanged apart from the appended turn, and the error propagates.
func (m *Memory) Append(ctx context.Context, turn Turn) error {
	m.buffer = append(m.buffer, turn)

	if m.EstimatedTokens() <= m.maxTokens {
		return nil
	}

	// Evict from the front until the estimate fits the budget. The whole
	// buffer may collapse into the summary.
	evictEnd := 0
	remaining := m.EstimatedTokens()
	for evictEnd < len(m.buffer) && remaining > m.maxTokens {
		remaining -= m.turnTokens(m.buffer[evictEnd])
		evictEnd++
	}

	evicted := make([]Turn, evictEnd)
	copy(evicted, m.buffer[:evictEnd])

	summary, err := m.summarizer.Summarize(ctx, m.summary, evicted)
	if err != nil {
		return fmt.Errorf("summarizing memory: %w", err)
	}

	m.summary = summary
	m.buffer = append([]Turn(nil), m.buffer[evictEnd:]...)
	return nil
}

// Summary returns the condensed representation of evicted turns. Empty
// until the first summarization pass.
func (m *Memory) Summary() string {
	return m.summary
}

// Buffer returns a copy of the turns not yet summarized.
func (m *Memory) Buffer() []Turn {
	return append([]Turn(nil), m.buffer...)
}

// EstimatedTokens returns the current token estimate of summary plus buffer.
func (m *Memory) EstimatedTokens() int {
	total := m.counter.CountTokens(m.summary)
	for _, turn := range m.buffer {
		total += m.turnTokens(turn)
	}
	return total
}

func (m *Memory) turnTokens(turn Turn) int {
	return m.counter.CountTokens(string(turn.Role)) + m.counter.CountTokens(turn.Content)
}
