// File path: internal/lms/types.go
package lms

import "time"

// Level is the ordinal skill level attached to a course.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Lesson is the published-lesson projection consumed by the search engine.
type Lesson struct {
	ID             string `json:"id"`
	CourseID       string `json:"courseId"`
	Title          string `json:"title"`
	Slug           string `json:"slug"`
	Description    string `json:"description,omitempty"`
	Content        string `json:"content,omitempty"`
	TranscriptPath string `json:"transcriptPath,omitempty"`
	SegmentsPath   string `json:"segmentsPath,omitempty"`
	Position       int    `json:"position"`
}

// Course is a read-mostly projection of a course record with joined category
// and tag names, fetched fresh per ranking call.
type Course struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	ShortDescription string     `json:"shortDescription,omitempty"`
	Description      string     `json:"description,omitempty"`
	WhatYouLearn     string     `json:"whatYouLearn,omitempty"`
	Category         string     `json:"category,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	Level            Level      `json:"level,omitempty"`
	RatingAvg        float64    `json:"ratingAvg"`
	RatingCount      int        `json:"ratingCount"`
	EnrolledCount    int        `json:"enrolledCount"`
	PublishedAt      *time.Time `json:"publishedAt,omitempty"`
}

// Enrollment captures a user's active membership in a course.
type Enrollment struct {
	UserID         string    `json:"userId"`
	CourseID       string    `json:"courseId"`
	Status         string    `json:"status"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
}

// Progress records the lesson a user most recently worked on in a course.
type Progress struct {
	UserID    string    `json:"userId"`
	CourseID  string    `json:"courseId"`
	LessonID  string    `json:"lessonId"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Conversation is the stored metadata of an assistant conversation, used to
// resolve the scoping course/lesson for a request.
type Conversation struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	CourseID string `json:"courseId,omitempty"`
	LessonID string `json:"lessonId,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

// ConversationMessage is one turn of stored conversation history,
// oldest-first when returned in a slice.
type ConversationMessage struct {
	SenderType string    `json:"senderType"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserLearningContext reflects the live state of a user's most recently
// accessed active enrollment. It is recomputed per request and never cached.
type UserLearningContext struct {
	CurrentCourse *Course  `json:"currentCourse,omitempty"`
	CurrentLesson *Lesson  `json:"currentLesson,omitempty"`
	RecentLessons []Lesson `json:"recentLessons,omitempty"`
}
