// File path: internal/store/queries.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/lms"
)

// FindPublished returns published lessons matching the filter, ordered by
// course and position.
func (s *Store) FindPublished(ctx context.Context, filter lms.LessonFilter) ([]lms.Lesson, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	clauses := []string{"published = 1"}
	args := []interface{}{}
	if id := strings.TrimSpace(filter.ID); id != "" {
		clauses = append(clauses, "id = ?")
		args = append(args, id)
	}
	if courseID := strings.TrimSpace(filter.CourseID); courseID != "" {
		clauses = append(clauses, "course_id = ?")
		args = append(args, courseID)
	}
	if len(filter.CourseIDs) > 0 {
		clauses = append(clauses, "course_id IN (?)")
		args = append(args, filter.CourseIDs)
	}
	if filter.RequireTranscript {
		clauses = append(clauses, "transcript_path != ''")
	}
	query := `SELECT * FROM lessons WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY course_id, position`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("expand lesson filter: %w", err)
	}
	rows := []lessonRow{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(expanded), expandedArgs...); err != nil {
		return nil, fmt.Errorf("select lessons: %w", err)
	}
	lessons := make([]lms.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, row.toLesson())
	}
	return lessons, nil
}

// FindByIDs returns published lessons for the given identifiers, preserving
// the order of the input slice.
func (s *Store) FindByIDs(ctx context.Context, ids []string) ([]lms.Lesson, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM lessons WHERE published = 1 AND id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("expand lesson ids: %w", err)
	}
	rows := []lessonRow{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select lessons by id: %w", err)
	}
	byID := make(map[string]lms.Lesson, len(rows))
	for _, row := range rows {
		byID[row.ID] = row.toLesson()
	}
	lessons := make([]lms.Lesson, 0, len(ids))
	for _, id := range ids {
		if lesson, ok := byID[id]; ok {
			lessons = append(lessons, lesson)
		}
	}
	return lessons, nil
}

// Search returns published courses matching the filter. Keywords apply as an
// OR of case-insensitive substring matches; an empty keyword set yields
// top-rated, most-enrolled courses.
func (s *Store) Search(ctx context.Context, filter lms.CourseFilter) ([]lms.Course, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	clauses := []string{"published = 1"}
	args := []interface{}{}
	keywordClauses := []string{}
	for _, keyword := range filter.Keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		pattern := "%" + keyword + "%"
		keywordClauses = append(keywordClauses,
			`(LOWER(title) LIKE ? OR LOWER(short_description) LIKE ? OR LOWER(description) LIKE ? OR LOWER(what_you_learn) LIKE ? OR LOWER(category) LIKE ? OR LOWER(tags) LIKE ?)`)
		args = append(args, pattern, pattern, pattern, pattern, pattern, pattern)
	}
	if len(keywordClauses) > 0 {
		clauses = append(clauses, "("+strings.Join(keywordClauses, " OR ")+")")
	}
	if level := strings.TrimSpace(string(filter.Level)); level != "" {
		clauses = append(clauses, "level = ?")
		args = append(args, level)
	}
	query := `SELECT * FROM courses WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY rating_avg DESC, enrolled_count DESC, id`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	rows := []courseRow{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select courses: %w", err)
	}
	courses := make([]lms.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses, nil
}

// FindByID returns a single published course, or nil when absent.
func (s *Store) FindByID(ctx context.Context, id string) (*lms.Course, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	var row courseRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM courses WHERE id = ? AND published = 1`, strings.TrimSpace(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select course: %w", err)
	}
	course := row.toCourse()
	return &course, nil
}

// ActiveCourseIDs returns the course identifiers of a user's active
// enrollments, most recently accessed first.
func (s *Store) ActiveCourseIDs(ctx context.Context, userID string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	ids := []string{}
	if err := s.db.SelectContext(ctx, &ids,
		`SELECT course_id FROM enrollments WHERE user_id = ? AND status = 'active' ORDER BY last_accessed_at DESC`,
		userID); err != nil {
		return nil, fmt.Errorf("select enrollments: %w", err)
	}
	return ids, nil
}

// MostRecentActive returns the active enrollment the user touched last, or
// nil when the user has none.
func (s *Store) MostRecentActive(ctx context.Context, userID string) (*lms.Enrollment, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	var row enrollmentRow
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM enrollments WHERE user_id = ? AND status = 'active' ORDER BY last_accessed_at DESC LIMIT 1`,
		userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select enrollment: %w", err)
	}
	enrollment := row.toEnrollment()
	return &enrollment, nil
}

// RecentProgress returns the user's most recently updated progress row in a
// course, or nil when no lesson has been started.
func (s *Store) RecentProgress(ctx context.Context, userID, courseID string) (*lms.Progress, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	var row progressRow
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM lesson_progress WHERE user_id = ? AND course_id = ? ORDER BY updated_at DESC LIMIT 1`,
		userID, courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select progress: %w", err)
	}
	progress := row.toProgress()
	return &progress, nil
}

// CompletedLessonIDs returns up to limit completed lesson identifiers in a
// course, most recently completed first.
func (s *Store) CompletedLessonIDs(ctx context.Context, userID, courseID string, limit int) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	query := `SELECT lesson_id FROM lesson_progress WHERE user_id = ? AND course_id = ? AND completed = 1 ORDER BY updated_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	ids := []string{}
	if err := s.db.SelectContext(ctx, &ids, query, userID, courseID); err != nil {
		return nil, fmt.Errorf("select completed lessons: %w", err)
	}
	return ids, nil
}

// Find returns the conversation metadata for the given identifier.
func (s *Store) Find(ctx context.Context, conversationID string) (*lms.Conversation, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	var row conversationRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM conversations WHERE id = ?`, strings.TrimSpace(conversationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, lms.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select conversation: %w", err)
	}
	conversation := row.toConversation()
	return &conversation, nil
}

// RecentMessages returns up to limit of the newest messages in a
// conversation, reordered oldest-first.
func (s *Store) RecentMessages(ctx context.Context, conversationID string, limit int) ([]lms.ConversationMessage, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialised")
	}
	query := `SELECT * FROM conversation_messages WHERE conversation_id = ? ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows := []messageRow{}
	if err := s.db.SelectContext(ctx, &rows, query, conversationID); err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	messages := make([]lms.ConversationMessage, len(rows))
	for i, row := range rows {
		messages[len(rows)-1-i] = row.toMessage()
	}
	return messages, nil
}
