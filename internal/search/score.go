// File path: internal/search/score.go
package search

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Minimum relevance a match must clear per result category. Lessons and
// courses are broader context and tolerate weaker matches than transcript
// spans.
const (
	ThresholdTranscript = 0.4
	ThresholdLesson     = 0.35
	ThresholdCourse     = 0.30
)

// Score computes a heuristic relevance in [0,1] between a query and a text
// span. It is pure, deterministic, and the single source of truth for "does
// this text answer this query".
//
// A verbatim substring match scores 0.9 plus a positional bonus. Full
// keyword coverage scores 0.7 plus a proximity bonus. Partial coverage earns
// proportional credit weighted toward longer, more discriminative keywords.
// A query with no extractable keywords scores a flat 0.3 regardless of text;
// this mirrors the historical behavior and is a known boundary case.
func Score(query, text string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	t := strings.ToLower(strings.TrimSpace(text))
	if q != "" && t != "" {
		if pos := strings.Index(t, q); pos >= 0 {
			return 0.9 + 0.1*(1-float64(pos)/float64(len(t)))
		}
	}
	keywords := ExtractKeywords(query)
	if len(keywords) == 0 {
		return 0.3
	}
	if t == "" {
		return 0
	}
	positions := make([]int, 0, len(keywords))
	matched := 0
	importantTotal := 0
	importantMatched := 0
	for _, kw := range keywords {
		important := utf8.RuneCountInString(kw) > 4
		if important {
			importantTotal++
		}
		pos := strings.Index(t, kw)
		if pos < 0 {
			continue
		}
		matched++
		positions = append(positions, pos)
		if important {
			importantMatched++
		}
	}
	if matched == len(keywords) {
		return 0.7 + proximityBonus(positions)
	}
	matchRatio := float64(matched) / float64(len(keywords))
	importantRatio := 0.0
	if importantTotal > 0 {
		importantRatio = float64(importantMatched) / float64(importantTotal)
	}
	score := matchRatio*0.5 + importantRatio*0.2
	if score > 0.7 {
		score = 0.7
	}
	return score
}

// proximityBonus rewards keyword occurrences clustered close together, up to
// +0.2, decaying linearly with the average gap between consecutive
// occurrences.
func proximityBonus(positions []int) float64 {
	if len(positions) < 2 {
		return 0.2
	}
	sort.Ints(positions)
	var total int
	for i := 1; i < len(positions); i++ {
		total += positions[i] - positions[i-1]
	}
	avg := float64(total) / float64(len(positions)-1)
	decay := 1 - avg/100
	if decay < 0 {
		decay = 0
	}
	return 0.2 * decay
}
