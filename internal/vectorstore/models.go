package vectorstore

import (
	"fmt"
	"strconv"
)

// ItemType distinguishes the two modalities stored in the index.
type ItemType string

const (
	// ItemTypeText is a chunk of text extracted from a document page.
	ItemTypeText ItemType = "text"
	// ItemTypeImage is a generated caption for an embedded image.
	ItemTypeImage ItemType = "image"
)

// PageUnknown is the sentinel page number used when the page of an item
// could not be determined.
const PageUnknown = -1

// Metadata keys persisted with every indexed item. These are a durable
// contract: consumers reading the index rely on required keys always being
// present and must ignore keys they do not know.
const (
	metaKeySource = "source"
	metaKeyPage   = "page_number"
	metaKeyType   = "type"
	metaKeyImage  = "image_file"
)

// ItemMeta is the metadata attached to an indexed item. It is a closed sum:
// either TextMeta or ImageMeta. The split removes the "image_file key present
// only sometimes" ambiguity of a loose map.
type ItemMeta interface {
	// Type reports the modality of the item.
	Type() ItemType
	// Source is the origin-document identifier, stable across re-indexing.
	Source() string
	// Page is the 1-based page number, or PageUnknown.
	Page() int

	toMap() map[string]string
}

// TextMeta is the metadata for a text chunk.
type TextMeta struct {
	SourceDoc  string
	PageNumber int
}

func (m TextMeta) Type() ItemType { return ItemTypeText }
func (m TextMeta) Source() string { return m.SourceDoc }
func (m TextMeta) Page() int      { return m.PageNumber }

func (m TextMeta) toMap() map[string]string {
	return map[string]string{
		metaKeySource: m.SourceDoc,
		metaKeyPage:   strconv.Itoa(m.PageNumber),
		metaKeyType:   string(ItemTypeText),
	}
}

// ImageMeta is the metadata for an image caption.
type ImageMeta struct {
	SourceDoc  string
	PageNumber int
	ImageFile  string
}

func (m ImageMeta) Type() ItemType { return ItemTypeImage }
func (m ImageMeta) Source() string { return m.SourceDoc }
func (m ImageMeta) Page() int      { return m.PageNumber }

func (m ImageMeta) toMap() map[string]string {
	return map[string]string{
		metaKeySource: m.SourceDoc,
		metaKeyPage:   strconv.Itoa(m.PageNumber),
		metaKeyType:   string(ItemTypeImage),
		metaKeyImage:  m.ImageFile,
	}
}

// metaFromMap reconstructs the typed metadata from the persisted form.
// Unknown keys are ignored; a missing or unknown type defaults to text so
// that items written by older versions remain readable.
func metaFromMap(m map[string]string) ItemMeta {
	page := PageUnknown
	if v, ok := m[metaKeyPage]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}

	if ItemType(m[metaKeyType]) == ItemTypeImage {
		return ImageMeta{
			SourceDoc:  m[metaKeySource],
			PageNumber: page,
			ImageFile:  m[metaKeyImage],
		}
	}
	return TextMeta{
		SourceDoc:  m[metaKeySource],
		PageNumber: page,
	}
}

// Document is an item to be stored in the vector index. Documents are
// immutable once added: the index only appends or is wiped wholesale.
type Document struct {
	// ID is the unique identifier. If empty, one is generated on add.
	ID string

	// Content is the chunk text or the generated image caption.
	Content string

	// Meta is the typed metadata for this item.
	Meta ItemMeta
}

// Validate checks the invariants every indexed item must satisfy.
func (d Document) Validate() error {
	if d.Content == "" {
		return fmt.Errorf("%w: empty content", ErrInvalidDocument)
	}
	if d.Meta == nil || d.Meta.Source() == "" {
		return fmt.Errorf("%w: missing source", ErrInvalidDocument)
	}
	return nil
}

// SearchResult is a retrieved item with its similarity score.
type SearchResult struct {
	ID      string
	Content string
	Score   float32
	Meta    ItemMeta
}

// Filter is the query-time predicate constraining which indexed items are
// eligible. The zero value matches everything. Non-empty terms are combined
// with AND; there are no OR or negation forms.
type Filter struct {
	// Sources restricts results to items whose source is in the set.
	Sources []string

	// ImagesOnly restricts results to image-caption items.
	ImagesOnly bool
}

// Empty reports whether the filter has no terms.
func (f Filter) Empty() bool {
	return len(f.Sources) == 0 && !f.ImagesOnly
}

// matches reports whether the given metadata satisfies the filter.
func (f Filter) matches(meta ItemMeta) bool {
	if f.ImagesOnly && meta.Type() != ItemTypeImage {
		return false
	}
	if len(f.Sources) > 0 {
		found := false
		for _, s := range f.Sources {
			if meta.Source() == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
