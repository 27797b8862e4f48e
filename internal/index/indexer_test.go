package index_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/docchat/internal/ai"
	"github.com/fyrsmithlabs/docchat/internal/index"
	"github.com/fyrsmithlabs/docchat/internal/ingest"
	"github.com/fyrsmithlabs/docchat/internal/vectorstore"
)

// fakeStore records added documents.
type fakeStore struct {
	docs    []vectorstore.Document
	wiped   bool
	addErr  error
	wipeErr error
}

func (s *fakeStore) Add(ctx context.Context, docs []vectorstore.Document) ([]string, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = fmt.Sprintf("id_%d", len(s.docs)+i)
	}
	s.docs = append(s.docs, docs...)
	return ids, nil
}

func (s *fakeStore) Query(ctx context.Context, query string, k int, f vectorstore.Filter) ([]vectorstore.SearchResult, error) {
	return nil, nil
}

func (s *fakeStore) Count(ctx context.Context) (int, error) { return len(s.docs), nil }

func (s *fakeStore) Wipe(ctx context.Context) error {
	if s.wipeErr != nil {
		return s.wipeErr
	}
	s.wiped = true
	s.docs = nil
	return nil
}

func (s *fakeStore) Close() error { return nil }

// fakeCaptioner captions by path, failing paths listed in fail.
type fakeCaptioner struct {
	fail  map[string]error
	empty map[string]bool
}

func (c *fakeCaptioner) Caption(ctx context.Context, imagePath string) (string, error) {
	if err, ok := c.fail[imagePath]; ok {
		return "", err
	}
	if c.empty[imagePath] {
		return "", ai.ErrEmptyResult
	}
	return "a caption for " + imagePath, nil
}

func TestIndexText(t *testing.T) {
	store := &fakeStore{}
	ix := index.NewIndexer(store, &fakeCaptioner{}, nil)

	chunks := []ingest.Chunk{
		{Content: "first chunk", Source: "a.pdf", Page: 1},
		{Content: "second chunk", Source: "a.pdf", Page: 2},
	}

	n, err := ix.IndexText(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, store.docs, 2)

	meta, ok := store.docs[0].Meta.(vectorstore.TextMeta)
	require.True(t, ok)
	assert.Equal(t, "a.pdf", meta.Source())
	assert.Equal(t, 1, meta.Page())
}

func TestIndexText_Empty(t *testing.T) {
	store := &fakeStore{}
	ix := index.NewIndexer(store, &fakeCaptioner{}, nil)

	n, err := ix.IndexText(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.docs)
}

func TestIndexText_AppendsDuplicates(t *testing.T) {
	store := &fakeStore{}
	ix := index.NewIndexer(store, &fakeCaptioner{}, nil)
	chunks := []ingest.Chunk{{Content: "same chunk", Source: "a.pdf", Page: 1}}

	_, err := ix.IndexText(context.Background(), chunks)
	require.NoError(t, err)
	_, err = ix.IndexText(context.Background(), chunks)
	require.NoError(t, err)

	assert.Len(t, store.docs, 2)
}

func TestIndexImages_SkipAndContinue(t *testing.T) {
	store := &fakeStore{}
	captioner := &fakeCaptioner{
		fail:  map[string]error{"img2.png": errors.New("service unavailable")},
		empty: map[string]bool{"img4.png": true},
	}
	ix := index.NewIndexer(store, captioner, nil)

	records := []ingest.ImageRecord{
		{Path: "img1.png", Page: 1, SourcePDF: "a.pdf"},
		{Path: "img2.png", Page: 2, SourcePDF: "a.pdf"},
		{Path: "img3.png", Page: 3, SourcePDF: "a.pdf"},
		{Path: "img4.png", Page: 4, SourcePDF: "a.pdf"},
	}

	result, err := ix.IndexImages(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Indexed)
	require.Len(t, result.Skips, 2)
	assert.Equal(t, 2, result.Skips[0].Page)
	assert.Equal(t, 4, result.Skips[1].Page)

	require.Len(t, store.docs, 2)
	meta, ok := store.docs[0].Meta.(vectorstore.ImageMeta)
	require.True(t, ok)
	assert.Equal(t, "img1.png", meta.ImageFile)
	assert.True(t, strings.HasPrefix(store.docs[0].Content, "a caption for"))
}

func TestIndexImages_AllSkipped(t *testing.T) {
	store := &fakeStore{}
	captioner := &fakeCaptioner{fail: map[string]error{
		"img1.png": errors.New("boom"),
	}}
	ix := index.NewIndexer(store, captioner, nil)

	result, err := ix.IndexImages(context.Background(), []ingest.ImageRecord{
		{Path: "img1.png", Page: 1, SourcePDF: "a.pdf"},
	})
	require.NoError(t, err)
	assert.Zero(t, result.Indexed)
	assert.Len(t, result.Skips, 1)
	assert.Empty(t, store.docs)
}

func TestIndexImages_StoreFailure(t *testing.T) {
	store := &fakeStore{addErr: errors.New("store down")}
	ix := index.NewIndexer(store, &fakeCaptioner{}, nil)

	_, err := ix.IndexImages(context.Background(), []ingest.ImageRecord{
		{Path: "img1.png", Page: 1, SourcePDF: "a.pdf"},
	})
	assert.Error(t, err)
}

func TestReinitialize(t *testing.T) {
	store := &fakeStore{}
	ix := index.NewIndexer(store, &fakeCaptioner{}, nil)

	_, err := ix.IndexText(context.Background(), []ingest.Chunk{
		{Content: "chunk", Source: "a.pdf", Page: 1},
	})
	require.NoError(t, err)

	require.NoError(t, ix.Reinitialize(context.Background()))
	assert.True(t, store.wiped)
	assert.Empty(t, store.docs)
}
