// File path: internal/search/types.go
package search

import (
	"strings"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/lms"
)

// Kind labels the source category of a search match.
type Kind string

const (
	KindTranscript Kind = "transcript"
	KindLesson     Kind = "lesson"
	KindCourse     Kind = "course"
)

// Match is a scored piece of retrieved material. Matches live for a single
// request and are never persisted.
type Match struct {
	Kind             Kind      `json:"kind"`
	LessonID         string    `json:"lessonId,omitempty"`
	CourseID         string    `json:"courseId,omitempty"`
	Title            string    `json:"title"`
	Excerpt          string    `json:"excerpt,omitempty"`
	Score            float64   `json:"relevanceScore"`
	StartTime        float64   `json:"startTime,omitempty"`
	Level            lms.Level `json:"level,omitempty"`
	IsFullTranscript bool      `json:"isFullTranscript,omitempty"`
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
