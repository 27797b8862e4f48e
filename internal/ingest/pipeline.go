package ingest

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"
)

// Pipeline ingests PDFs: per-page text chunking plus embedded image
// extraction. Both halves stamp every produced item with the PDF base name
// as its source identifier.
type Pipeline struct {
	chunker  *Chunker
	imageDir string
	logger   *zap.Logger
}

// Options configures the ingestion pipeline.
type Options struct {
	// ChunkSize is the character width of a text chunk.
	ChunkSize int

	// ChunkOverlap is the character overlap between adjacent chunks.
	ChunkOverlap int

	// ImageDir is the base directory for extracted images. Empty means
	// alongside the ingested PDF.
	ImageDir string
}

// NewPipeline creates a Pipeline.
func NewPipeline(opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		chunker:  NewChunker(opts.ChunkSize, opts.ChunkOverlap),
		imageDir: opts.ImageDir,
		logger:   logger,
	}
}

// Ingest splits the PDF into text chunks and extracts its embedded images.
//
// A totally unreadable PDF returns an error. Individual corrupt images are
// isolated: each becomes a Skip in the result and is logged, and processing
// of the remaining images continues.
func (p *Pipeline) Ingest(ctx context.Context, pdfPath string) (*Result, error) {
	source := filepath.Base(pdfPath)

	pages, err := readPages(pdfPath)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, page := range pages {
		result.Chunks = append(result.Chunks, p.chunker.Split(page.text, source, page.page)...)
	}

	raws, readSkips, err := extractRawImages(pdfPath)
	if err != nil {
		return nil, err
	}
	records, persistSkips := persistImages(raws, imageDirFor(p.imageDir, pdfPath), source)

	result.Images = records
	result.Skips = append(readSkips, persistSkips...)

	for _, skip := range result.Skips {
		p.logger.Warn("skipping embedded image",
			zap.String("source", source),
			zap.Int("page", skip.Page),
			zap.String("reason", skip.Reason),
		)
	}

	p.logger.Info("ingested PDF",
		zap.String("source", source),
		zap.Int("pages", len(pages)),
		zap.Int("chunks", len(result.Chunks)),
		zap.Int("images", len(result.Images)),
		zap.Int("skips", len(result.Skips)),
	)

	return result, nil
}
