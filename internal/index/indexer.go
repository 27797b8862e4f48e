// Package index writes text chunks and image captions into the vector
// index under the shared metadata schema.
package index

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docchat/internal/ingest"
	"github.com/fyrsmithlabs/docchat/internal/vectorstore"
)

// Captioner turns an image file into a short text description.
type Captioner interface {
	Caption(ctx context.Context, imagePath string) (string, error)
}

// ImageIndexResult aggregates the outcome of indexing a batch of images.
// Captioning failures are per-item skips, never a failure of the batch.
type ImageIndexResult struct {
	Indexed int
	Skips   []ingest.Skip
}

// Indexer appends indexed items to the vector store. It never rewrites or
// deduplicates existing entries: re-indexing the same source appends
// duplicates.
type Indexer struct {
	store     vectorstore.Store
	captioner Captioner
	logger    *zap.Logger
}

// NewIndexer creates an Indexer.
func NewIndexer(store vectorstore.Store, captioner Captioner, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{
		store:     store,
		captioner: captioner,
		logger:    logger,
	}
}

// IndexText appends text chunks to the collection and returns the number
// indexed. An empty batch indexes nothing and is not an error.
func (ix *Indexer) IndexText(ctx context.Context, chunks []ingest.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	docs := make([]vectorstore.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = vectorstore.Document{
			Content: chunk.Content,
			Meta: vectorstore.TextMeta{
				SourceDoc:  chunk.Source,
				PageNumber: chunk.Page,
			},
		}
	}

	ids, err := ix.store.Add(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("indexing text chunks: %w", err)
	}

	ix.logger.Info("indexed text chunks", zap.Int("count", len(ids)))
	return len(ids), nil
}

// IndexImages captions each extracted image and appends the captions to the
// collection. A failed or empty caption skips that image and continues with
// the rest; only a store failure aborts.
func (ix *Indexer) IndexImages(ctx context.Context, records []ingest.ImageRecord) (*ImageIndexResult, error) {
	result := &ImageIndexResult{}
	if len(records) == 0 {
		return result, nil
	}

	var docs []vectorstore.Document
	for _, rec := range records {
		caption, err := ix.captioner.Caption(ctx, rec.Path)
		if err != nil {
			result.Skips = append(result.Skips, ingest.Skip{
				Page:   rec.Page,
				Reason: fmt.Sprintf("captioning %s: %v", rec.Path, err),
			})
			ix.logger.Warn("skipping image caption",
				zap.String("image", rec.Path),
				zap.Int("page", rec.Page),
				zap.Error(err),
			)
			continue
		}

		docs = append(docs, vectorstore.Document{
			Content: caption,
			Meta: vectorstore.ImageMeta{
				SourceDoc:  rec.SourcePDF,
				PageNumber: rec.Page,
				ImageFile:  filepath.Base(rec.Path),
			},
		})
	}

	if len(docs) == 0 {
		return result, nil
	}

	ids, err := ix.store.Add(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("indexing image captions: %w", err)
	}

	result.Indexed = len(ids)
	ix.logger.Info("indexed image captions",
		zap.Int("count", result.Indexed),
		zap.Int("skips", len(result.Skips)),
	)
	return result, nil
}

// Reinitialize performs a destructive wipe of the collection's persisted
// state. Explicit and irreversible; indexing never invokes it implicitly.
func (ix *Indexer) Reinitialize(ctx context.Context) error {
	if err := ix.store.Wipe(ctx); err != nil {
		return fmt.Errorf("reinitializing index: %w", err)
	}
	ix.logger.Info("index reinitialized")
	return nil
}
