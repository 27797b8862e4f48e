// Package ingest splits PDF documents into text chunks and extracts their
// embedded raster images.
package ingest

import "errors"

// ErrUnreadablePDF indicates the PDF could not be opened or parsed at all.
// This is fatal for the ingestion call, unlike per-image failures.
var ErrUnreadablePDF = errors.New("unreadable PDF")

// Chunk is a bounded text window produced by splitting a document page.
type Chunk struct {
	// Content is the chunk text.
	Content string

	// Source is the origin-document identifier (PDF base name).
	Source string

	// Page is the 1-based page the chunk was taken from.
	Page int
}

// ImageRecord describes an extracted, validated and persisted embedded image.
type ImageRecord struct {
	// Path is where the image bytes were written.
	Path string

	// Page is the 1-based page the image was embedded on.
	Page int

	// SourcePDF is the origin-document identifier (PDF base name).
	SourcePDF string
}

// Skip records a per-item recoverable failure. Skips are normal control-flow
// values aggregated by the batch caller, not errors.
type Skip struct {
	// Page is the page the skipped item was on.
	Page int

	// Reason describes why the item was skipped.
	Reason string
}

// Result is the outcome of ingesting one PDF.
type Result struct {
	Chunks []Chunk
	Images []ImageRecord
	Skips  []Skip
}
