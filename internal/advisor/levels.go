// File path: internal/advisor/levels.go
package advisor

import (
	"strings"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/lms"
)

// Hand-curated bilingual phrase tables. These are configuration data, not
// logic; the ranker stays language-agnostic and the tables can be swapped to
// retarget it.

type levelPattern struct {
	phrases []string
	level   lms.Level
}

// levelPatterns map query phrasing onto skill levels. Ordering matters:
// the first table row with a phrase hit wins.
var levelPatterns = []levelPattern{
	{
		level: lms.LevelAdvanced,
		phrases: []string{
			"advanced", "expert", "already experienced", "in depth", "deep dive",
			"nâng cao", "chuyên sâu", "đã có kinh nghiệm", "thành thạo",
		},
	},
	{
		level: lms.LevelIntermediate,
		phrases: []string{
			"intermediate", "some experience", "next level", "beyond basics",
			"trung cấp", "đã biết cơ bản", "có chút kinh nghiệm",
		},
	},
	{
		level: lms.LevelBeginner,
		phrases: []string{
			"beginner", "just starting", "from scratch", "newbie", "no experience",
			"getting started", "basics", "mới bắt đầu", "người mới", "cơ bản",
			"chưa biết gì", "vỡ lòng",
		},
	},
}

// categorySynonyms widens extracted keywords before the course repository
// query so a broad term still reaches specialized courses. The local re-rank
// afterwards keeps ranking deterministic regardless of this expansion.
var categorySynonyms = map[string][]string{
	"web":        {"frontend", "backend", "fullstack", "html", "css", "javascript"},
	"frontend":   {"web", "html", "css", "javascript", "react"},
	"backend":    {"web", "api", "server", "database"},
	"mobile":     {"android", "ios", "flutter", "react native"},
	"data":       {"analytics", "sql", "python", "machine learning"},
	"design":     {"ui", "ux", "figma", "đồ họa"},
	"marketing":  {"seo", "content", "quảng cáo"},
	"lập":        {"programming", "code"},
	"trình":      {"programming", "code"},
	"thiết":      {"design", "ui", "ux"},
	"kế":         {"design", "ui", "ux"},
	"javascript": {"js", "web", "frontend"},
	"python":     {"data", "machine learning"},
}

// DetectLevel pattern-matches a query against the bilingual level table.
// First match wins; no match returns the empty level and the ranker applies
// neither boost nor penalty.
func DetectLevel(query string) lms.Level {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return ""
	}
	for _, pattern := range levelPatterns {
		for _, phrase := range pattern.phrases {
			if strings.Contains(normalized, phrase) {
				return pattern.level
			}
		}
	}
	return ""
}

// expandKeywords widens a keyword set with the synonym table, de-duplicating
// while preserving first-seen order.
func expandKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	expanded := make([]string, 0, len(keywords))
	add := func(kw string) {
		if _, dup := seen[kw]; dup {
			return
		}
		seen[kw] = struct{}{}
		expanded = append(expanded, kw)
	}
	for _, kw := range keywords {
		add(kw)
		for _, syn := range categorySynonyms[kw] {
			add(syn)
		}
	}
	return expanded
}
