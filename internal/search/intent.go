// File path: internal/search/intent.go
package search

import "regexp"

// Intent is a special query intent detected ahead of windowed transcript
// search.
type Intent int

const (
	IntentNone Intent = iota
	// IntentFullTranscript asks for the complete transcript of a lesson.
	IntentFullTranscript
	// IntentLessonSummary asks what a lesson taught or covered.
	IntentLessonSummary
)

// The detectors are deliberately table-driven so their heuristic pattern
// sets can be iterated without touching orchestration logic. Patterns cover
// both supported languages.
var fullTranscriptPatterns = compile(
	`(give|show|send|get).*(full|entire|whole|complete).*(transcript|subtitle|caption)`,
	`full transcript`,
	`(toàn bộ|đầy đủ).*(phụ đề|transcript|lời thoại)`,
	`(xem|cho).*(phụ đề|transcript).*(đầy đủ|toàn bộ)`,
)

var lessonSummaryPatterns = compile(
	`what (did|does|do|was|is).*(lesson|video|lecture).*(teach|cover|about)`,
	`what (did|do) (i|we) learn`,
	`(summarize|summary of).*(lesson|video|lecture)`,
	`bài (học|giảng).*(dạy|nói về|về).*(gì|những gì)`,
	`(tóm tắt|nội dung).*(bài học|bài giảng|video)`,
)

// DetectIntent classifies a query against the intent pattern tables. First
// match wins; an unmatched query is ordinary search input.
func DetectIntent(query string) Intent {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return IntentNone
	}
	for _, re := range fullTranscriptPatterns {
		if re.MatchString(normalized) {
			return IntentFullTranscript
		}
	}
	for _, re := range lessonSummaryPatterns {
		if re.MatchString(normalized) {
			return IntentLessonSummary
		}
	}
	return IntentNone
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}
