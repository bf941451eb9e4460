// File path: internal/search/lesson.go
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/lms"
)

// maxLessonMatches bounds the lesson-level contribution to a context payload.
const maxLessonMatches = 3

// LessonSearcher ranks lessons by their title and description text. It backs
// the broader lesson bucket of a context payload, complementing the
// segment-level transcript search.
type LessonSearcher struct {
	lessons lms.LessonRepository
}

func NewLessonSearcher(lessons lms.LessonRepository) *LessonSearcher {
	return &LessonSearcher{lessons: lessons}
}

// Search scores published lessons in the given courses against the query.
// Matches clear the lesson relevance threshold and come back score-descending.
func (s *LessonSearcher) Search(ctx context.Context, query string, courseIDs []string, limit int) ([]Match, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = maxLessonMatches
	}
	lessons, err := s.lessons.FindPublished(ctx, lms.LessonFilter{CourseIDs: courseIDs})
	if err != nil {
		return nil, fmt.Errorf("find lessons: %w", err)
	}
	var matches []Match
	for _, lesson := range lessons {
		text := strings.TrimSpace(lesson.Title + " " + lesson.Description)
		if text == "" {
			continue
		}
		score := Score(query, text)
		if score < ThresholdLesson {
			continue
		}
		matches = append(matches, Match{
			Kind:     KindLesson,
			LessonID: lesson.ID,
			CourseID: lesson.CourseID,
			Title:    lesson.Title,
			Excerpt:  lesson.Description,
			Score:    score,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
