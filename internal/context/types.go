// File path: internal/context/types.go
package context

import (
	"context"
	"time"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/advisor"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/lms"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/search"
)

// Mode is the discrete conversational intent selecting which retrieval
// strategy runs.
type Mode string

const (
	// ModeGeneral skips retrieval entirely; the payload carries only user
	// context and conversation history.
	ModeGeneral Mode = "general"
	// ModeCourse restricts retrieval to the target lesson's transcript.
	ModeCourse Mode = "course"
	// ModeAdvisor runs course recommendation instead of transcript search.
	ModeAdvisor Mode = "advisor"
	// ModeDefault searches transcripts and lessons scoped by the resolved
	// target course and enrollment set.
	ModeDefault Mode = "default"
)

// ParseMode normalizes a mode string; anything unrecognized takes the
// default strategy.
func ParseMode(raw string) Mode {
	switch Mode(raw) {
	case ModeGeneral, ModeCourse, ModeAdvisor:
		return Mode(raw)
	default:
		return ModeDefault
	}
}

// Request identifies one context-assembly call.
type Request struct {
	UserID         string
	Query          string
	ConversationID string
	Mode           Mode
	// LessonID optionally scopes a course-mode request to a single lesson.
	LessonID string
}

// SearchResults is the retrieval portion of a payload. It is the only part
// that may be served from cache.
type SearchResults struct {
	Transcripts  []search.Match `json:"transcripts"`
	Lessons      []search.Match `json:"lessons"`
	Courses      []search.Match `json:"courses"`
	TotalResults int            `json:"totalResults"`
}

// Payload is the structured bundle of retrieved material and user state
// handed to the downstream generative component. It is built fresh per call.
type Payload struct {
	UserContext         *lms.UserLearningContext  `json:"userContext"`
	SearchResults       SearchResults             `json:"searchResults"`
	ConversationHistory []lms.ConversationMessage `json:"conversationHistory"`
	Query               string                    `json:"query"`
	Mode                Mode                      `json:"mode"`
}

// Config controls the behaviour of the context builder.
type Config struct {
	ResultCacheTTL      time.Duration
	ResultCacheCapacity int
	HistoryLimit        int
	RecentLessonLimit   int
	LessonMatchLimit    int
	CourseLimit         int
}

// DefaultConfig returns the baseline configuration balancing recall and
// latency for context assembly.
func DefaultConfig() Config {
	return Config{
		ResultCacheTTL:      2 * time.Minute,
		ResultCacheCapacity: 200,
		HistoryLimit:        10,
		RecentLessonLimit:   3,
		LessonMatchLimit:    3,
		CourseLimit:         5,
	}
}

// Builder assembles mode-dependent context payloads for the generative
// response orchestrator.
type Builder interface {
	BuildContext(ctx context.Context, req Request) (Payload, error)
	// SearchCandidateCourses exposes course recommendation directly,
	// outside of a conversation.
	SearchCandidateCourses(ctx context.Context, query string, limit int) ([]advisor.ScoredCourse, error)
}
