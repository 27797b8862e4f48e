// Package retrieval composes query-time filter predicates and runs
// similarity lookups against the vector index.
package retrieval

import (
	"strings"

	"github.com/fyrsmithlabs/docchat/internal/vectorstore"
)

// visualKeywords is the fixed vocabulary signalling visual intent in a
// query. Matching is case-insensitive substring.
var visualKeywords = []string{
	"image", "photo", "picture", "diagram", "visual", "show", "see",
}

// Compose builds the filter predicate for a query.
//
// A non-empty conversation scope adds a source-membership term. A query
// containing a visual-intent keyword adds a type=image term. Terms are
// combined with AND; zero terms yields the unrestricted filter.
func Compose(query string, scope []string) vectorstore.Filter {
	filter := vectorstore.Filter{}

	if len(scope) > 0 {
		filter.Sources = append([]string(nil), scope...)
	}

	lower := strings.ToLower(query)
	for _, kw := range visualKeywords {
		if strings.Contains(lower, kw) {
			filter.ImagesOnly = true
			break
		}
	}

	return filter
}
