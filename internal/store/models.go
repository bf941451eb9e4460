// File path: internal/store/models.go
package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/lms"
)

type courseRow struct {
	ID               string       `db:"id"`
	Title            string       `db:"title"`
	Slug             string       `db:"slug"`
	ShortDescription string       `db:"short_description"`
	Description      string       `db:"description"`
	WhatYouLearn     string       `db:"what_you_learn"`
	Category         string       `db:"category"`
	Tags             string       `db:"tags"`
	Level            string       `db:"level"`
	RatingAvg        float64      `db:"rating_avg"`
	RatingCount      int          `db:"rating_count"`
	EnrolledCount    int          `db:"enrolled_count"`
	Published        bool         `db:"published"`
	PublishedAt      sql.NullTime `db:"published_at"`
}

func (r courseRow) toCourse() lms.Course {
	course := lms.Course{
		ID:               r.ID,
		Title:            r.Title,
		Slug:             r.Slug,
		ShortDescription: r.ShortDescription,
		Description:      r.Description,
		WhatYouLearn:     r.WhatYouLearn,
		Category:         r.Category,
		Level:            lms.Level(r.Level),
		RatingAvg:        r.RatingAvg,
		RatingCount:      r.RatingCount,
		EnrolledCount:    r.EnrolledCount,
	}
	if r.PublishedAt.Valid {
		published := r.PublishedAt.Time
		course.PublishedAt = &published
	}
	for _, tag := range strings.Split(r.Tags, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			course.Tags = append(course.Tags, trimmed)
		}
	}
	return course
}

type lessonRow struct {
	ID             string `db:"id"`
	CourseID       string `db:"course_id"`
	Title          string `db:"title"`
	Slug           string `db:"slug"`
	Description    string `db:"description"`
	Content        string `db:"content"`
	TranscriptPath string `db:"transcript_path"`
	SegmentsPath   string `db:"segments_path"`
	Position       int    `db:"position"`
	Published      bool   `db:"published"`
}

func (r lessonRow) toLesson() lms.Lesson {
	return lms.Lesson{
		ID:             r.ID,
		CourseID:       r.CourseID,
		Title:          r.Title,
		Slug:           r.Slug,
		Description:    r.Description,
		Content:        r.Content,
		TranscriptPath: r.TranscriptPath,
		SegmentsPath:   r.SegmentsPath,
		Position:       r.Position,
	}
}

type enrollmentRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	CourseID       string    `db:"course_id"`
	Status         string    `db:"status"`
	EnrolledAt     time.Time `db:"enrolled_at"`
	LastAccessedAt time.Time `db:"last_accessed_at"`
}

func (r enrollmentRow) toEnrollment() lms.Enrollment {
	return lms.Enrollment{
		UserID:         r.UserID,
		CourseID:       r.CourseID,
		Status:         r.Status,
		LastAccessedAt: r.LastAccessedAt,
	}
}

type progressRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	CourseID       string    `db:"course_id"`
	LessonID       string    `db:"lesson_id"`
	Completed      bool      `db:"completed"`
	WatchedSeconds float64   `db:"watched_seconds"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r progressRow) toProgress() lms.Progress {
	return lms.Progress{
		UserID:    r.UserID,
		CourseID:  r.CourseID,
		LessonID:  r.LessonID,
		Completed: r.Completed,
		UpdatedAt: r.UpdatedAt,
	}
}

type conversationRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	CourseID  string    `db:"course_id"`
	LessonID  string    `db:"lesson_id"`
	Mode      string    `db:"mode"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r conversationRow) toConversation() lms.Conversation {
	return lms.Conversation{
		ID:       r.ID,
		UserID:   r.UserID,
		CourseID: r.CourseID,
		LessonID: r.LessonID,
		Mode:     r.Mode,
	}
}

type messageRow struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	Role           string    `db:"role"`
	Content        string    `db:"content"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r messageRow) toMessage() lms.ConversationMessage {
	return lms.ConversationMessage{
		SenderType: r.Role,
		Message:    r.Content,
		CreatedAt:  r.CreatedAt,
	}
}
