package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docchat/internal/vectorstore"
)

// ErrNoContent is the defined "no relevant content found" outcome: the
// lookup succeeded but matched nothing. Distinct from a service failure.
var ErrNoContent = errors.New("no relevant content found")

// Retriever runs filtered similarity lookups with a fixed retrieval width.
type Retriever struct {
	store  vectorstore.Store
	k      int
	logger *zap.Logger
}

// NewRetriever creates a Retriever. k is the configured retrieval width.
func NewRetriever(store vectorstore.Store, k int, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{store: store, k: k, logger: logger}
}

// K returns the configured retrieval width.
func (r *Retriever) K() int { return r.k }

// Retrieve composes the filter from scope and query text and passes it,
// with k, unmodified to the vector index. Ranking is the index's concern.
// Returns ErrNoContent when the lookup matches nothing.
func (r *Retriever) Retrieve(ctx context.Context, query string, scope []string) ([]vectorstore.SearchResult, error) {
	filter := Compose(query, scope)

	results, err := r.store.Query(ctx, query, r.k, filter)
	if err != nil {
		return nil, fmt.Errorf("vector index lookup: %w", err)
	}

	r.logger.Debug("retrieved indexed items",
		zap.Int("k", r.k),
		zap.Int("results", len(results)),
		zap.Strings("scope", filter.Sources),
		zap.Bool("images_only", filter.ImagesOnly),
	)

	if len(results) == 0 {
		return nil, ErrNoContent
	}
	return results, nil
}

// FormatContext renders retrieved items for the completion prompt. Text and
// image items are rendered distinctly so the model can reference pages and
// image files.
func FormatContext(results []vectorstore.SearchResult) string {
	parts := make([]string, 0, len(results))
	for _, res := range results {
		switch meta := res.Meta.(type) {
		case vectorstore.ImageMeta:
			parts = append(parts, fmt.Sprintf(
				"[Image]\nDescription: %s\nPDF: %s\nImage file: %s\nPage: %d",
				res.Content, meta.SourceDoc, meta.ImageFile, meta.PageNumber,
			))
		default:
			parts = append(parts, fmt.Sprintf(
				"[Text]\n%s\nPDF: %s, Page: %d",
				res.Content, meta.Source(), meta.Page(),
			))
		}
	}
	return strings.Join(parts, "\n\n")
}
