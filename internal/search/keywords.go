// File path: internal/search/keywords.go
package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const minKeywordRunes = 3

// ExtractKeywords tokenizes a free-text query into the keywords the scoring
// engine matches on. Tokens are lowercased, split on non-letter/non-digit
// boundaries, stripped of stop words and short tokens (unless allow-listed),
// and de-duplicated preserving first-seen order.
func ExtractKeywords(query string) []string {
	lowered := strings.ToLower(strings.TrimSpace(query))
	if lowered == "" {
		return nil
	}
	tokens := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var keywords []string
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if _, stopped := defaultStopwords[token]; stopped {
			continue
		}
		if utf8.RuneCountInString(token) < minKeywordRunes {
			if _, allowed := shortTokenAllowlist[token]; !allowed {
				continue
			}
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}
	return keywords
}
