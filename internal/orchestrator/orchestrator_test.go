package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/docchat/internal/ai"
	"github.com/fyrsmithlabs/docchat/internal/conversation"
	"github.com/fyrsmithlabs/docchat/internal/retrieval"
	"github.com/fyrsmithlabs/docchat/internal/vectorstore"
)

type fakeRetriever struct {
	results   []vectorstore.SearchResult
	err       error
	lastQuery string
	lastScope []string
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, scope []string) ([]vectorstore.SearchResult, error) {
	f.lastQuery = query
	f.lastScope = scope
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeCompleter struct {
	answer     string
	err        error
	lastSystem string
	lastTurns  []ai.ChatTurn
	lastMsg    string
	calls      int
}

func (f *fakeCompleter) Complete(_ context.Context, systemPrompt string, turns []ai.ChatTurn, message string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastTurns = turns
	f.lastMsg = message
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(context.Context, string, []conversation.Turn) (string, error) {
	return "summary", nil
}

func textResult(content, source string, page int) vectorstore.SearchResult {
	return vectorstore.SearchResult{
		Content: content,
		Meta:    vectorstore.TextMeta{SourceDoc: source, PageNumber: page},
	}
}

func newTestOrchestrator(retriever Retriever, completer Completer) (*Orchestrator, *conversation.Store) {
	store := conversation.NewStore(4096, fakeSummarizer{}, nil)
	return New(store, retriever, completer, nil), store
}

func TestHandle_GeneratesConversationName(t *testing.T) {
	retriever := &fakeRetriever{results: []vectorstore.SearchResult{textResult("ch1", "a.pdf", 0)}}
	completer := &fakeCompleter{answer: "the answer"}
	orch, store := newTestOrchestrator(retriever, completer)

	answer, name, err := orch.Handle(context.Background(), "what is in chapter one?", "")
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
	assert.True(t, strings.HasPrefix(name, "convo-"))

	convo, ok := store.Get(name)
	require.True(t, ok)
	history := convo.History()
	require.Len(t, history, 2)
	assert.Equal(t, conversation.RoleUser, history[0].Role)
	assert.Equal(t, "what is in chapter one?", history[0].Content)
	assert.Equal(t, conversation.RoleAssistant, history[1].Role)
	assert.Equal(t, "the answer", history[1].Content)
}

func TestHandle_ReusesNamedConversation(t *testing.T) {
	retriever := &fakeRetriever{results: []vectorstore.SearchResult{textResult("ch1", "a.pdf", 0)}}
	completer := &fakeCompleter{answer: "ok"}
	orch, store := newTestOrchestrator(retriever, completer)

	_, name1, err := orch.Handle(context.Background(), "first", "project")
	require.NoError(t, err)
	_, name2, err := orch.Handle(context.Background(), "second", "project")
	require.NoError(t, err)

	assert.Equal(t, "project", name1)
	assert.Equal(t, name1, name2)

	convo, ok := store.Get("project")
	require.True(t, ok)
	assert.Len(t, convo.History(), 4)
}

func TestHandle_PassesScopeToRetriever(t *testing.T) {
	retriever := &fakeRetriever{results: []vectorstore.SearchResult{textResult("x", "a.pdf", 0)}}
	completer := &fakeCompleter{answer: "ok"}
	orch, store := newTestOrchestrator(retriever, completer)

	store.SetScope("scoped", []string{"a.pdf", "b.pdf"})

	_, _, err := orch.Handle(context.Background(), "question", "scoped")
	require.NoError(t, err)
	assert.Equal(t, "question", retriever.lastQuery)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, retriever.lastScope)
}

func TestHandle_NoContentSkipsCompletion(t *testing.T) {
	retriever := &fakeRetriever{err: retrieval.ErrNoContent}
	completer := &fakeCompleter{answer: "should not be used"}
	orch, store := newTestOrchestrator(retriever, completer)

	answer, name, err := orch.Handle(context.Background(), "unknown topic", "")
	require.NoError(t, err)
	assert.Equal(t, NoContentAnswer, answer)
	assert.Zero(t, completer.calls)

	// The exchange is still recorded.
	convo, ok := store.Get(name)
	require.True(t, ok)
	history := convo.History()
	require.Len(t, history, 2)
	assert.Equal(t, NoContentAnswer, history[1].Content)
}

func TestHandle_RetrieverFailurePropagates(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("store offline")}
	completer := &fakeCompleter{}
	orch, store := newTestOrchestrator(retriever, completer)

	_, name, err := orch.Handle(context.Background(), "question", "proj")
	require.Error(t, err)
	assert.NotErrorIs(t, err, retrieval.ErrNoContent)
	assert.Zero(t, completer.calls)

	convo, ok := store.Get(name)
	require.True(t, ok)
	assert.Empty(t, convo.History())
}

func TestHandle_CompletionFailurePropagates(t *testing.T) {
	retriever := &fakeRetriever{results: []vectorstore.SearchResult{textResult("x", "a.pdf", 0)}}
	completer := &fakeCompleter{err: errors.New("rate limited")}
	orch, store := newTestOrchestrator(retriever, completer)

	_, name, err := orch.Handle(context.Background(), "question", "proj")
	require.Error(t, err)

	convo, ok := store.Get(name)
	require.True(t, ok)
	assert.Empty(t, convo.History())
}

func TestHandle_EmptyMessageRejected(t *testing.T) {
	orch, _ := newTestOrchestrator(&fakeRetriever{}, &fakeCompleter{})

	_, _, err := orch.Handle(context.Background(), "   ", "proj")
	require.Error(t, err)
}

func TestHandle_SystemPromptCarriesContextAndSummary(t *testing.T) {
	retriever := &fakeRetriever{results: []vectorstore.SearchResult{
		textResult("Gophers burrow.", "animals.pdf", 3),
		{
			Content: "A gopher at a burrow entrance.",
			Meta:    vectorstore.ImageMeta{SourceDoc: "animals.pdf", PageNumber: 4, ImageFile: "animals_page4_7.png"},
		},
	}}
	completer := &fakeCompleter{answer: "ok"}
	orch, _ := newTestOrchestrator(retriever, completer)

	_, _, err := orch.Handle(context.Background(), "show me the gopher", "proj")
	require.NoError(t, err)
	assert.Contains(t, completer.lastSystem, "Gophers burrow.")
	assert.Contains(t, completer.lastSystem, "animals_page4_7.png")
	assert.Equal(t, "show me the gopher", completer.lastMsg)
	assert.Empty(t, completer.lastTurns)
}

func TestHandle_PriorTurnsReachCompleter(t *testing.T) {
	retriever := &fakeRetriever{results: []vectorstore.SearchResult{textResult("x", "a.pdf", 0)}}
	completer := &fakeCompleter{answer: "second answer"}
	orch, _ := newTestOrchestrator(retriever, completer)

	_, name, err := orch.Handle(context.Background(), "first question", "")
	require.NoError(t, err)
	_, _, err = orch.Handle(context.Background(), "second question", name)
	require.NoError(t, err)

	require.Len(t, completer.lastTurns, 2)
	assert.Equal(t, "user", completer.lastTurns[0].Role)
	assert.Equal(t, "first question", completer.lastTurns[0].Content)
	assert.Equal(t, "assistant", completer.lastTurns[1].Role)
}
