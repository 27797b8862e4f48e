package conversation_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/docchat/internal/conversation"
)

func newTestStore() *conversation.Store {
	return conversation.NewStore(10000, &fakeSummarizer{}, nil)
}

func TestResolve_EmptyNameAlwaysCreates(t *testing.T) {
	store := newTestStore()

	first, created := store.Resolve("")
	require.True(t, created)
	second, created := store.Resolve("")
	require.True(t, created)

	assert.NotEqual(t, first.Name(), second.Name())
	assert.NotSame(t, first, second)
	assert.Contains(t, first.Name(), "convo-")
}

func TestResolve_NamedIsStable(t *testing.T) {
	store := newTestStore()

	first, created := store.Resolve("proj")
	require.True(t, created)
	second, created := store.Resolve("proj")
	require.False(t, created)

	assert.Same(t, first, second)

	// Same instance means same history.
	require.NoError(t, first.AppendExchange(context.Background(), "hi", "hello"))
	assert.Len(t, second.History(), 2)
}

func TestGet_DoesNotCreate(t *testing.T) {
	store := newTestStore()

	_, ok := store.Get("missing")
	assert.False(t, ok)

	store.Resolve("present")
	convo, ok := store.Get("present")
	require.True(t, ok)
	assert.Equal(t, "present", convo.Name())
}

func TestSetScope_WholesaleReplaceIdempotent(t *testing.T) {
	store := newTestStore()

	convo := store.SetScope("proj", []string{"A.pdf", "B.pdf"})
	assert.Equal(t, []string{"A.pdf", "B.pdf"}, convo.Scope())

	// Idempotent: applying the same scope changes nothing.
	store.SetScope("proj", []string{"A.pdf", "B.pdf"})
	assert.Equal(t, []string{"A.pdf", "B.pdf"}, convo.Scope())

	// Wholesale: the new set replaces, never merges.
	store.SetScope("proj", []string{"C.pdf"})
	assert.Equal(t, []string{"C.pdf"}, convo.Scope())

	// History and memory untouched by scope updates.
	assert.Empty(t, convo.History())
	summary, recent := convo.MemoryContext()
	assert.Empty(t, summary)
	assert.Empty(t, recent)
}

func TestAppendExchange(t *testing.T) {
	store := newTestStore()
	convo, _ := store.Resolve("proj")

	require.NoError(t, convo.AppendExchange(context.Background(), "what is revenue?", "12 million"))

	history := convo.History()
	require.Len(t, history, 2)
	assert.Equal(t, conversation.RoleUser, history[0].Role)
	assert.Equal(t, "what is revenue?", history[0].Content)
	assert.Equal(t, conversation.RoleAssistant, history[1].Role)
	assert.Equal(t, "12 million", history[1].Content)

	_, recent := convo.MemoryContext()
	assert.Len(t, recent, 2)
}

func TestStore_ConcurrentSameName(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			convo, _ := store.Resolve("shared")
			msg := fmt.Sprintf("message %d", n)
			_ = convo.AppendExchange(ctx, msg, "answer "+msg)
		}(i)
	}
	wg.Wait()

	convo, ok := store.Get("shared")
	require.True(t, ok)
	history := convo.History()
	require.Len(t, history, workers*2)

	// Appends never interleave: each user turn is directly followed by its
	// assistant turn.
	for i := 0; i < len(history); i += 2 {
		assert.Equal(t, conversation.RoleUser, history[i].Role)
		assert.Equal(t, conversation.RoleAssistant, history[i+1].Role)
		assert.Equal(t, "answer "+history[i].Content, history[i+1].Content)
	}
}

func TestList_Sorted(t *testing.T) {
	store := newTestStore()
	store.Resolve("beta")
	store.Resolve("alpha")
	store.Resolve("gamma")

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, store.List())
}
