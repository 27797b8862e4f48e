package conversation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conversation is a named session. All mutation goes through methods that
// hold the per-conversation lock, so two requests racing on the same name
// never interleave history appends or scope updates.
type Conversation struct {
	name string

	mu      sync.Mutex
	history []Turn
	scope   []string
	memory  *Memory
}

// Name returns the conversation's unique name.
func (c *Conversation) Name() string { return c.name }

// History returns a copy of the full display history, chronological.
func (c *Conversation) History() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Turn(nil), c.history...)
}

// Scope returns a copy of the document scope. Empty means unrestricted.
func (c *Conversation) Scope() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.scope...)
}

// SetScope replaces the document scope wholesale. Idempotent; history and
// memory are untouched.
func (c *Conversation) SetScope(sources []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scope = append([]string(nil), sources...)
}

// MemoryContext returns the compacted representation used to condition the
// next completion: the running summary and the unsummarized recent turns.
func (c *Conversation) MemoryContext() (summary string, recent []Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory.Summary(), c.memory.Buffer()
}

// AppendExchange appends one user/assistant exchange to the display history
// and to the bounded memory atomically. The display history always grows by
// two turns; memory may summarize. A summarizer failure propagates but the
// display history keeps both turns, so the UI reflects what was said.
func (c *Conversation) AppendExchange(ctx context.Context, message, answer string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	userTurn := Turn{Role: RoleUser, Content: message}
	assistantTurn := Turn{Role: RoleAssistant, Content: answer}
	c.history = append(c.history, userTurn, assistantTurn)

	if err := c.memory.Append(ctx, userTurn); err != nil {
		return err
	}
	return c.memory.Append(ctx, assistantTurn)
}

// Store is the session registry. It owns all conversations, keyed by name,
// with get-or-create semantics. Conversations live until process teardown;
// there is no delete operation.
type Store struct {
	maxTokens  int
	summarizer Summarizer
	logger     *zap.Logger

	mu            sync.RWMutex
	conversations map[string]*Conversation
}

// NewStore creates a Store. maxTokens is each conversation's memory budget.
func NewStore(maxTokens int, summarizer Summarizer, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		maxTokens:     maxTokens,
		summarizer:    summarizer,
		logger:        logger,
		conversations: make(map[string]*Conversation),
	}
}

// Resolve returns the conversation for name, creating it if unknown.
//
// An empty name always generates a fresh unique name and a new
// conversation; it never matches an existing session. The returned bool
// reports whether a conversation was created by this call.
func (s *Store) Resolve(name string) (*Conversation, bool) {
	if name == "" {
		name = generateName()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if convo, ok := s.conversations[name]; ok {
		return convo, false
	}

	convo := &Conversation{
		name:   name,
		memory: NewMemory(s.maxTokens, s.summarizer),
	}
	s.conversations[name] = convo

	s.logger.Info("created conversation", zap.String("name", name))
	return convo, true
}

// Get returns the conversation for name without creating it.
func (s *Store) Get(name string) (*Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	convo, ok := s.conversations[name]
	return convo, ok
}

// SetScope resolves the conversation (creating if necessary) and replaces
// its document scope.
func (s *Store) SetScope(name string, sources []string) *Conversation {
	convo, _ := s.Resolve(name)
	convo.SetScope(sources)
	return convo
}

// List returns all conversation names, sorted.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.conversations))
	for name := range s.conversations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// generateName builds a fresh conversation name from the current timestamp
// plus a random suffix, so concurrent anonymous sessions never collide.
func generateName() string {
	return fmt.Sprintf("convo-%s-%s",
		time.Now().Format("2006-01-02-15-04-05"),
		uuid.NewString()[:8],
	)
}
