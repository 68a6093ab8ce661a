package crawler

import "github.com/Adda-Baaj/khobor-sandhan/internal/domain"

// Dedupe drops every article whose link was already seen, keeping first occurrences in order.
func Dedupe(articles []domain.Article) []domain.Article {
	if len(articles) == 0 {
		return articles
	}

	seen := make(map[string]struct{}, len(articles))
	out := make([]domain.Article, 0, len(articles))
	for _, art := range articles {
		if _, dup := seen[art.Link]; dup {
			continue
		}
		seen[art.Link] = struct{}{}
		out = append(out, art)
	}
	return out
}
