// Package orchestrator is the per-message entry point: it resolves the
// conversation, retrieves matching indexed items, invokes the completion
// service and appends the resulting turns.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docchat/internal/ai"
	"github.com/fyrsmithlabs/docchat/internal/conversation"
	"github.com/fyrsmithlabs/docchat/internal/retrieval"
	"github.com/fyrsmithlabs/docchat/internal/vectorstore"
)

// NoContentAnswer is the defined reply when a retrieval query matches no
// indexed items. It is an outcome, not an error, and is recorded in the
// conversation history like any other answer.
const NoContentAnswer = "No relevant documents or images were found for your question."

const systemPromptTemplate = `You are an AI assistant that answers user questions using the indexed document excerpts and image descriptions below. Be concise and relevant, and cite the source PDF and page when helpful. Do not invent content that is not supported by the excerpts.

Retrieved context:
%s
%s`

// Retriever runs a filtered similarity lookup for a query within a scope.
type Retriever interface {
	Retrieve(ctx context.Context, query string, scope []string) ([]vectorstore.SearchResult, error)
}

// Completer invokes the external completion service.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, turns []ai.ChatTurn, message string) (string, error)
}

// Orchestrator glues the conversation store, retriever and completion
// service together for one message exchange.
type Orchestrator struct {
	conversations *conversation.Store
	retriever     Retriever
	completer     Completer
	logger        *zap.Logger
}

// New creates an Orchestrator.
func New(conversations *conversation.Store, retriever Retriever, completer Completer, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		conversations: conversations,
		retriever:     retriever,
		completer:     completer,
		logger:        logger,
	}
}

// Handle processes one user message in the named conversation, creating the
// conversation if necessary. It returns the answer and the conversation
// name that ended up being used, which matters when the caller supplied
// none and one was generated.
func (o *Orchestrator) Handle(ctx context.Context, message, conversationName string) (answer, name string, err error) {
	if strings.TrimSpace(message) == "" {
		return "", conversationName, errors.New("message cannot be empty")
	}

	convo, created := o.conversations.Resolve(conversationName)
	name = convo.Name()
	if created {
		o.logger.Info("started conversation", zap.String("name", name))
	}

	results, err := o.retriever.Retrieve(ctx, message, convo.Scope())
	switch {
	case errors.Is(err, retrieval.ErrNoContent):
		// A defined outcome, surfaced distinctly from a service failure.
		answer = NoContentAnswer
	case err != nil:
		return "", name, fmt.Errorf("retrieving context: %w", err)
	default:
		answer, err = o.complete(ctx, convo, message, results)
		if err != nil {
			return "", name, err
		}
	}

	if err := convo.AppendExchange(ctx, message, answer); err != nil {
		// The exchange itself succeeded; a failed memory compaction must not
		// drop the answer. The next breach retries summarization.
		o.logger.Warn("memory compaction failed",
			zap.String("conversation", name),
			zap.Error(err),
		)
	}

	return answer, name, nil
}

// complete builds the completion request from retrieved context, memory and
// the message, and invokes the completion service.
func (o *Orchestrator) complete(ctx context.Context, convo *conversation.Conversation, message string, results []vectorstore.SearchResult) (string, error) {
	summary, recent := convo.MemoryContext()

	summaryBlock := ""
	if summary != "" {
		summaryBlock = "\nSummary of the earlier conversation:\n" + summary
	}
	systemPrompt := fmt.Sprintf(systemPromptTemplate, retrieval.FormatContext(results), summaryBlock)

	turns := make([]ai.ChatTurn, len(recent))
	for i, t := range recent {
		turns[i] = ai.ChatTurn{Role: string(t.Role), Content: t.Content}
	}

	answer, err := o.completer.Complete(ctx, systemPrompt, turns, message)
	if err != nil {
		return "", fmt.Errorf("completion service: %w", err)
	}
	return answer, nil
}
