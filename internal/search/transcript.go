// File path: internal/search/transcript.go
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/common"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/lms"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/transcript"
)

const (
	// maxCandidateLessons caps per-request lesson fan-out for latency.
	maxCandidateLessons = 2
	// windowRadius is the number of neighboring segments included around a
	// matched segment for context.
	windowRadius = 2
	// fallbackSegmentCount is the size of the leading-segment span scored
	// when no windowed hit is found.
	fallbackSegmentCount = 5
	// maxWindowsPerLesson bounds how many windows a single lesson may
	// contribute to keep payloads compact.
	maxWindowsPerLesson = 3
	// fullTranscriptRunes truncates full-transcript responses.
	fullTranscriptRunes = 2000
)

// TranscriptSearcher locates candidate lessons and searches their transcripts
// or fallback lesson text.
type TranscriptSearcher struct {
	lessons     lms.LessonRepository
	artifacts   lms.ArtifactStore
	transcripts *transcript.Cache
}

// NewTranscriptSearcher wires the lesson repository and artifact access into
// a searcher.
func NewTranscriptSearcher(lessons lms.LessonRepository, artifacts lms.ArtifactStore, transcripts *transcript.Cache) *TranscriptSearcher {
	return &TranscriptSearcher{lessons: lessons, artifacts: artifacts, transcripts: transcripts}
}

// Options scope a transcript search. LessonID restricts the search to a
// single lesson and waives the transcript-artifact requirement; otherwise
// candidates come from CourseID or the enrolled-course set and must have a
// transcript recorded.
type Options struct {
	LessonID          string
	CourseID          string
	UserID            string
	EnrolledCourseIDs []string
}

// Search returns transcript-category matches ranked score-descending, all
// clearing the transcript relevance threshold. A lesson-scoped search for a
// nonexistent lesson returns lms.ErrLessonNotFound.
func (s *TranscriptSearcher) Search(ctx context.Context, query string, opts Options) ([]Match, error) {
	candidates, err := s.candidates(ctx, opts)
	if err != nil {
		return nil, err
	}
	intent := DetectIntent(query)
	keywords := ExtractKeywords(query)
	var matches []Match
	for _, lesson := range candidates {
		matches = append(matches, s.searchLesson(ctx, lesson, query, keywords, intent)...)
	}
	filtered := matches[:0]
	for _, m := range matches {
		if m.Score >= ThresholdTranscript {
			filtered = append(filtered, m)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})
	return filtered, nil
}

func (s *TranscriptSearcher) candidates(ctx context.Context, opts Options) ([]lms.Lesson, error) {
	if id := strings.TrimSpace(opts.LessonID); id != "" {
		lessons, err := s.lessons.FindPublished(ctx, lms.LessonFilter{ID: id})
		if err != nil {
			return nil, fmt.Errorf("find lesson %s: %w", id, err)
		}
		if len(lessons) == 0 {
			return nil, fmt.Errorf("lesson %s: %w", id, lms.ErrLessonNotFound)
		}
		return lessons[:1], nil
	}
	filter := lms.LessonFilter{RequireTranscript: true, Limit: maxCandidateLessons}
	if courseID := strings.TrimSpace(opts.CourseID); courseID != "" {
		filter.CourseID = courseID
	} else if len(opts.EnrolledCourseIDs) > 0 {
		filter.CourseIDs = opts.EnrolledCourseIDs
	} else {
		return nil, nil
	}
	lessons, err := s.lessons.FindPublished(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find candidate lessons: %w", err)
	}
	if len(lessons) > maxCandidateLessons {
		lessons = lessons[:maxCandidateLessons]
	}
	return lessons, nil
}

func (s *TranscriptSearcher) searchLesson(ctx context.Context, lesson lms.Lesson, query string, keywords []string, intent Intent) []Match {
	logger := common.Logger()
	if strings.TrimSpace(lesson.TranscriptPath) == "" {
		return s.searchLessonText(lesson, query, keywords)
	}
	if !s.artifactReachable(ctx, lesson) {
		logger.Debug("search: transcript artifact unreachable, skipping lesson", "lesson", lesson.ID)
		return nil
	}
	segments, err := s.transcripts.Load(ctx, lesson.TranscriptPath)
	if err != nil {
		logger.Warn("search: transcript load failed", "lesson", lesson.ID, "error", err)
		return nil
	}
	if intent != IntentNone {
		return []Match{s.fullTranscriptMatch(lesson, segments)}
	}
	matches := s.windowedSearch(lesson, segments, query, keywords)
	if len(matches) == 0 && len(segments) > 0 {
		span := segments
		if len(span) > fallbackSegmentCount {
			span = span[:fallbackSegmentCount]
		}
		text := joinSegments(span)
		if score := Score(query, text); score >= ThresholdTranscript {
			matches = append(matches, Match{
				Kind:      KindTranscript,
				LessonID:  lesson.ID,
				CourseID:  lesson.CourseID,
				Title:     lesson.Title,
				Excerpt:   text,
				Score:     score,
				StartTime: span[0].Start,
			})
		}
	}
	return matches
}

// searchLessonText answers from title/description/content when a lesson has
// no transcript artifact recorded. The match still requires a naive
// substring hit in addition to clearing the threshold.
func (s *TranscriptSearcher) searchLessonText(lesson lms.Lesson, query string, keywords []string) []Match {
	text := strings.TrimSpace(strings.Join([]string{lesson.Title, lesson.Description, lesson.Content}, " "))
	if text == "" {
		return nil
	}
	if !containsAnyTerm(text, query, keywords) {
		return nil
	}
	score := Score(query, text)
	if score < ThresholdTranscript {
		return nil
	}
	return []Match{{
		Kind:     KindTranscript,
		LessonID: lesson.ID,
		CourseID: lesson.CourseID,
		Title:    lesson.Title,
		Excerpt:  truncateRunes(text, fullTranscriptRunes),
		Score:    score,
	}}
}

func (s *TranscriptSearcher) artifactReachable(ctx context.Context, lesson lms.Lesson) bool {
	if ok, _ := s.artifacts.Exists(ctx, lesson.TranscriptPath); ok {
		return true
	}
	sibling := lesson.SegmentsPath
	if strings.TrimSpace(sibling) == "" {
		sibling = transcript.SegmentsPath(lesson.TranscriptPath)
	}
	ok, _ := s.artifacts.Exists(ctx, sibling)
	return ok
}

func (s *TranscriptSearcher) fullTranscriptMatch(lesson lms.Lesson, segments []transcript.Segment) Match {
	text := truncateRunes(joinSegments(segments), fullTranscriptRunes)
	match := Match{
		Kind:             KindTranscript,
		LessonID:         lesson.ID,
		CourseID:         lesson.CourseID,
		Title:            lesson.Title,
		Excerpt:          text,
		Score:            1.0,
		IsFullTranscript: true,
	}
	if len(segments) > 0 {
		match.StartTime = segments[0].Start
	}
	return match
}

// windowedSearch scans segments for query hits and scores each hit with its
// surrounding context window. The scan resumes past a matched window so
// overlapping windows do not produce near-duplicate matches.
func (s *TranscriptSearcher) windowedSearch(lesson lms.Lesson, segments []transcript.Segment, query string, keywords []string) []Match {
	var matches []Match
	for i := 0; i < len(segments) && len(matches) < maxWindowsPerLesson; i++ {
		if !containsAnyTerm(segments[i].Text, query, keywords) {
			continue
		}
		lo := i - windowRadius
		if lo < 0 {
			lo = 0
		}
		hi := i + windowRadius + 1
		if hi > len(segments) {
			hi = len(segments)
		}
		window := segments[lo:hi]
		text := joinSegments(window)
		score := Score(query, text)
		if score >= ThresholdTranscript {
			matches = append(matches, Match{
				Kind:      KindTranscript,
				LessonID:  lesson.ID,
				CourseID:  lesson.CourseID,
				Title:     lesson.Title,
				Excerpt:   text,
				Score:     score,
				StartTime: window[0].Start,
			})
		}
		i = hi - 1
	}
	return matches
}

func containsAnyTerm(text, query string, keywords []string) bool {
	lowered := strings.ToLower(text)
	if q := normalizeQuery(query); q != "" && strings.Contains(lowered, q) {
		return true
	}
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func joinSegments(segments []transcript.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if trimmed := strings.TrimSpace(seg.Text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

func truncateRunes(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
