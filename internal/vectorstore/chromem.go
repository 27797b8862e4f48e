package vectorstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// timeNow is a variable for testing purposes (allows mocking time).
var timeNow = time.Now

// ChromemConfig holds configuration for the chromem-go embedded vector index.
type ChromemConfig struct {
	// Path is the directory for persistent storage.
	// Default: "~/.config/docchat/index"
	Path string

	// Compress enables gzip compression for stored data.
	Compress bool

	// Collection is the collection name.
	// Default: "knowledge_base"
	Collection string
}

// ApplyDefaults sets default values for unset fields.
func (c *ChromemConfig) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "~/.config/docchat/index"
	}
	if c.Collection == "" {
		c.Collection = "knowledge_base"
	}
}

// Validate validates the configuration.
func (c *ChromemConfig) Validate() error {
	if strings.ContainsAny(c.Collection, " /\\") {
		return fmt.Errorf("%w: collection name %q contains invalid characters", ErrInvalidConfig, c.Collection)
	}
	return nil
}

// ChromemStore implements Store using chromem-go.
//
// chromem-go is an embeddable vector database with zero third-party
// dependencies: pure Go, no external service, automatic persistence to disk.
type ChromemStore struct {
	db       *chromem.DB
	embedder Embedder
	config   ChromemConfig
	logger   *zap.Logger
}

// NewChromemStore creates a new ChromemStore with the given configuration.
func NewChromemStore(config ChromemConfig, embedder Embedder, logger *zap.Logger) (*ChromemStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	expandedPath, err := expandHomePath(config.Path)
	if err != nil {
		return nil, fmt.Errorf("expanding path: %w", err)
	}

	if err := os.MkdirAll(expandedPath, 0755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", expandedPath, err)
	}

	db, err := chromem.NewPersistentDB(expandedPath, config.Compress)
	if err != nil {
		return nil, fmt.Errorf("creating chromem DB: %w", err)
	}

	store := &ChromemStore{
		db:       db,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}

	// Materialize the collection up front so a fresh store answers queries
	// with zero results instead of "not found".
	if _, err := store.collection(); err != nil {
		return nil, err
	}

	logger.Info("chromem store initialized",
		zap.String("path", expandedPath),
		zap.Bool("compress", config.Compress),
		zap.String("collection", config.Collection),
	)

	return store, nil
}

// expandHomePath expands ~ to the home directory.
func expandHomePath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// createEmbeddingFunc bridges our Embedder interface to chromem.
func (s *ChromemStore) createEmbeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.EmbedQuery(ctx, text)
	}
}

// collection returns the backing chromem collection, creating it if needed.
func (s *ChromemStore) collection() (*chromem.Collection, error) {
	collection, err := s.db.GetOrCreateCollection(s.config.Collection, nil, s.createEmbeddingFunc())
	if err != nil {
		return nil, fmt.Errorf("getting/creating collection %s: %w", s.config.Collection, err)
	}
	return collection, nil
}

// Add appends documents to the collection. Existing entries are never
// rewritten; adding the same content twice stores it twice.
func (s *ChromemStore) Add(ctx context.Context, docs []Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyDocuments
	}

	for i, doc := range docs {
		if err := doc.Validate(); err != nil {
			return nil, fmt.Errorf("document at index %d: %w", i, err)
		}
	}

	collection, err := s.collection()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(docs))
	texts := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
		if ids[i] == "" {
			ids[i] = fmt.Sprintf("doc_%d_%s", timeNow().UnixNano(), uuid.NewString()[:8])
		}
		texts[i] = doc.Content
	}

	// Generate embeddings in batch
	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromemDocs[i] = chromem.Document{
			ID:        ids[i],
			Content:   doc.Content,
			Metadata:  doc.Meta.toMap(),
			Embedding: embeddings[i],
		}
	}

	// Concurrency of 1 since we already have embeddings
	if err := collection.AddDocuments(ctx, chromemDocs, 1); err != nil {
		return nil, fmt.Errorf("adding documents: %w", err)
	}

	s.logger.Debug("added documents to chromem",
		zap.String("collection", s.config.Collection),
		zap.Int("count", len(docs)),
	)

	return ids, nil
}

// Query performs similarity search with the given filter predicate.
//
// Single-term filters map onto chromem's native metadata matching. The
// multi-source set membership term has no native equivalent, so in that case
// the store scans the ranked candidates and keeps the first k matches.
func (s *ChromemStore) Query(ctx context.Context, query string, k int, filter Filter) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	collection, err := s.collection()
	if err != nil {
		return nil, err
	}

	docCount := collection.Count()
	if docCount == 0 {
		return []SearchResult{}, nil
	}

	where := map[string]string{}
	if filter.ImagesOnly {
		where[metaKeyType] = string(ItemTypeImage)
	}

	nResults := k
	postFilter := false
	switch len(filter.Sources) {
	case 0:
	case 1:
		where[metaKeySource] = filter.Sources[0]
	default:
		// Set membership needs a post-pass; rank the whole collection so no
		// eligible item is cut off before filtering.
		nResults = docCount
		postFilter = true
	}
	if len(where) == 0 {
		where = nil
	}

	// chromem requires nResults <= doc count
	if nResults > docCount {
		nResults = docCount
	}

	results, err := collection.Query(ctx, query, nResults, where, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", s.config.Collection, err)
	}

	searchResults := make([]SearchResult, 0, len(results))
	for _, r := range results {
		meta := metaFromMap(r.Metadata)
		if postFilter && !filter.matches(meta) {
			continue
		}
		searchResults = append(searchResults, SearchResult{
			ID:      r.ID,
			Content: r.Content,
			Score:   r.Similarity,
			Meta:    meta,
		})
		if len(searchResults) == k {
			break
		}
	}

	s.logger.Debug("queried chromem collection",
		zap.String("collection", s.config.Collection),
		zap.Int("k", k),
		zap.Int("results", len(searchResults)),
	)

	return searchResults, nil
}

// Count returns the number of items in the collection.
func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	collection, err := s.collection()
	if err != nil {
		return 0, err
	}
	return collection.Count(), nil
}

// Wipe destroys the collection's persisted state and recreates it empty.
// This is irreversible and never invoked implicitly by indexing.
func (s *ChromemStore) Wipe(ctx context.Context) error {
	if err := s.db.DeleteCollection(s.config.Collection); err != nil {
		return fmt.Errorf("deleting collection %s: %w", s.config.Collection, err)
	}
	if _, err := s.collection(); err != nil {
		return err
	}

	s.logger.Info("wiped chromem collection",
		zap.String("collection", s.config.Collection),
	)
	return nil
}

// Close releases resources. chromem persists on write, so this is a no-op
// kept for interface symmetry with remote store implementations.
func (s *ChromemStore) Close() error {
	return nil
}
