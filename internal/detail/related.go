package detail

import "bookmart/pkg/domain"

// Related-books pagination is a fixed policy: first page, six entries.
const (
	relatedPage     = 1
	relatedPageSize = 6
)

// BuildRelatedQuery derives the related-books query from a loaded book:
// the distinct author ids plus the book's group. ok is false when no query
// should be issued, i.e. the book has no authors or no group.
func BuildRelatedQuery(book domain.BookDetail) (query domain.RelatedQuery, ok bool) {
	ids := make([]string, 0, len(book.Authors))
	seen := make(map[string]struct{}, len(book.Authors))
	for _, a := range book.Authors {
		if a.ID == "" {
			continue
		}
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		ids = append(ids, a.ID)
	}
	if len(ids) == 0 || book.BookGroupID == "" {
		return domain.RelatedQuery{}, false
	}
	return domain.RelatedQuery{
		AuthorIDs: ids,
		GroupID:   book.BookGroupID,
		Page:      relatedPage,
		PageSize:  relatedPageSize,
	}, true
}

// sameRelatedQuery compares two queries by value: author ids as a set plus
// the group id. Re-deriving the same pair must not re-issue a fetch.
func sameRelatedQuery(a, b domain.RelatedQuery) bool {
	if a.GroupID != b.GroupID || len(a.AuthorIDs) != len(b.AuthorIDs) {
		return false
	}
	set := make(map[string]struct{}, len(a.AuthorIDs))
	for _, id := range a.AuthorIDs {
		set[id] = struct{}{}
	}
	for _, id := range b.AuthorIDs {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
