// File path: internal/lms/repos.go
package lms

import "context"

// LessonFilter narrows a published-lesson lookup. Filters compose with AND
// semantics; zero values are ignored.
type LessonFilter struct {
	ID                string
	CourseID          string
	CourseIDs         []string
	RequireTranscript bool
	Limit             int
}

// CourseFilter narrows a course search. Keywords apply as an OR of substring
// matches across title, descriptions, category, tag names, and level. An
// empty keyword set returns top-rated, most-enrolled courses.
type CourseFilter struct {
	Keywords []string
	Level    Level
	Limit    int
}

// LessonRepository exposes read access to published lessons.
type LessonRepository interface {
	FindPublished(ctx context.Context, filter LessonFilter) ([]Lesson, error)
	FindByIDs(ctx context.Context, ids []string) ([]Lesson, error)
}

// CourseRepository exposes read access to course records with joined
// category/tag names.
type CourseRepository interface {
	Search(ctx context.Context, filter CourseFilter) ([]Course, error)
	FindByID(ctx context.Context, id string) (*Course, error)
}

// EnrollmentRepository exposes read-only enrollment and progress lookups.
type EnrollmentRepository interface {
	ActiveCourseIDs(ctx context.Context, userID string) ([]string, error)
	MostRecentActive(ctx context.Context, userID string) (*Enrollment, error)
	RecentProgress(ctx context.Context, userID, courseID string) (*Progress, error)
	CompletedLessonIDs(ctx context.Context, userID, courseID string, limit int) ([]string, error)
}

// ConversationRepository exposes conversation metadata and stored history.
type ConversationRepository interface {
	Find(ctx context.Context, conversationID string) (*Conversation, error)
	// RecentMessages returns up to limit messages ordered oldest-first.
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]ConversationMessage, error)
}

// ArtifactStore provides byte-level read access to transcript artifacts.
type ArtifactStore interface {
	Exists(ctx context.Context, path string) (bool, error)
	Read(ctx context.Context, path string) ([]byte, error)
}
