// File path: internal/store/store_test.go
package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/lms"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		if _, err := s.DB().Exec(stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}
}

func TestOpenMigratesIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	seed(t, first, `INSERT INTO courses (id, title, slug, published) VALUES ('c1', 'Go', 'go', 1)`)
	if err := first.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen with existing schema: %v", err)
	}
	defer second.Close()

	course, err := second.FindByID(context.Background(), "c1")
	if err != nil {
		t.Fatalf("find seeded course: %v", err)
	}
	if course == nil || course.Title != "Go" {
		t.Fatalf("expected seeded course to survive reopen, got %+v", course)
	}
}

func TestFindPublishedFilters(t *testing.T) {
	s := openTestStore(t)
	seed(t, s,
		`INSERT INTO courses (id, title, slug, published) VALUES ('c1', 'Go', 'go', 1)`,
		`INSERT INTO lessons (id, course_id, title, slug, transcript_path, position, published)
                 VALUES ('l1', 'c1', 'Intro', 'intro', 'c1/l1.srt', 1, 1)`,
		`INSERT INTO lessons (id, course_id, title, slug, transcript_path, position, published)
                 VALUES ('l2', 'c1', 'No transcript', 'no-transcript', '', 2, 1)`,
		`INSERT INTO lessons (id, course_id, title, slug, transcript_path, position, published)
                 VALUES ('l3', 'c1', 'Draft', 'draft', 'c1/l3.srt', 3, 0)`,
	)
	ctx := context.Background()

	all, err := s.FindPublished(ctx, lms.LessonFilter{CourseID: "c1"})
	if err != nil {
		t.Fatalf("find published: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 published lessons, got %d", len(all))
	}
	if all[0].ID != "l1" || all[1].ID != "l2" {
		t.Fatalf("expected position order, got %v then %v", all[0].ID, all[1].ID)
	}

	withTranscript, err := s.FindPublished(ctx, lms.LessonFilter{CourseIDs: []string{"c1"}, RequireTranscript: true})
	if err != nil {
		t.Fatalf("find with transcript: %v", err)
	}
	if len(withTranscript) != 1 || withTranscript[0].ID != "l1" {
		t.Fatalf("expected only l1, got %+v", withTranscript)
	}

	none, err := s.FindPublished(ctx, lms.LessonFilter{ID: "l3"})
	if err != nil {
		t.Fatalf("find draft: %v", err)
	}
	if len(none) != 0 {
		t.Fatal("unpublished lesson must not surface")
	}
}

func TestFindByIDsPreservesInputOrder(t *testing.T) {
	s := openTestStore(t)
	seed(t, s,
		`INSERT INTO courses (id, title, slug, published) VALUES ('c1', 'Go', 'go', 1)`,
		`INSERT INTO lessons (id, course_id, title, slug, position, published) VALUES ('l1', 'c1', 'One', 'one', 1, 1)`,
		`INSERT INTO lessons (id, course_id, title, slug, position, published) VALUES ('l2', 'c1', 'Two', 'two', 2, 1)`,
	)
	lessons, err := s.FindByIDs(context.Background(), []string{"l2", "missing", "l1"})
	if err != nil {
		t.Fatalf("find by ids: %v", err)
	}
	if len(lessons) != 2 || lessons[0].ID != "l2" || lessons[1].ID != "l1" {
		t.Fatalf("expected input order l2,l1 got %+v", lessons)
	}
}

func TestCourseSearchKeywordsAndFallback(t *testing.T) {
	s := openTestStore(t)
	seed(t, s,
		`INSERT INTO courses (id, title, slug, category, tags, rating_avg, enrolled_count, published)
                 VALUES ('c1', 'Docker fundamentals', 'docker', 'devops', 'docker,containers', 4.0, 100, 1)`,
		`INSERT INTO courses (id, title, slug, category, tags, rating_avg, enrolled_count, published)
                 VALUES ('c2', 'Watercolor painting', 'paint', 'art', 'painting', 4.8, 900, 1)`,
		`INSERT INTO courses (id, title, slug, published) VALUES ('c3', 'Hidden draft', 'draft', 0)`,
	)
	ctx := context.Background()

	matched, err := s.Search(ctx, lms.CourseFilter{Keywords: []string{"docker"}})
	if err != nil {
		t.Fatalf("keyword search: %v", err)
	}
	if len(matched) != 1 || matched[0].ID != "c1" {
		t.Fatalf("expected only the docker course, got %+v", matched)
	}
	if len(matched[0].Tags) != 2 || matched[0].Tags[0] != "docker" {
		t.Fatalf("tags not split: %v", matched[0].Tags)
	}

	topRated, err := s.Search(ctx, lms.CourseFilter{})
	if err != nil {
		t.Fatalf("empty search: %v", err)
	}
	if len(topRated) != 2 {
		t.Fatalf("expected both published courses, got %d", len(topRated))
	}
	if topRated[0].ID != "c2" {
		t.Fatalf("expected rating order, got %s first", topRated[0].ID)
	}
}

func TestFindByIDMissing(t *testing.T) {
	s := openTestStore(t)
	course, err := s.FindByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if course != nil {
		t.Fatal("expected nil for missing course")
	}
}

func TestEnrollmentLookups(t *testing.T) {
	s := openTestStore(t)
	seed(t, s,
		`INSERT INTO courses (id, title, slug, published) VALUES ('c1', 'Go', 'go', 1)`,
		`INSERT INTO courses (id, title, slug, published) VALUES ('c2', 'Rust', 'rust', 1)`,
		`INSERT INTO courses (id, title, slug, published) VALUES ('c3', 'Python', 'python', 1)`,
		`INSERT INTO enrollments (id, user_id, course_id, status, last_accessed_at)
                 VALUES ('e1', 'u1', 'c1', 'active', '2026-08-01 10:00:00')`,
		`INSERT INTO enrollments (id, user_id, course_id, status, last_accessed_at)
                 VALUES ('e2', 'u1', 'c2', 'active', '2026-08-20 10:00:00')`,
		`INSERT INTO enrollments (id, user_id, course_id, status, last_accessed_at)
                 VALUES ('e3', 'u1', 'c3', 'cancelled', '2026-08-30 10:00:00')`,
	)
	ctx := context.Background()

	ids, err := s.ActiveCourseIDs(ctx, "u1")
	if err != nil {
		t.Fatalf("active course ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "c2" {
		t.Fatalf("expected most recent first, got %v", ids)
	}

	recent, err := s.MostRecentActive(ctx, "u1")
	if err != nil {
		t.Fatalf("most recent active: %v", err)
	}
	if recent == nil || recent.CourseID != "c2" {
		t.Fatalf("expected c2 enrollment, got %+v", recent)
	}

	missing, err := s.MostRecentActive(ctx, "nobody")
	if err != nil {
		t.Fatalf("missing enrollment: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil enrollment for unknown user")
	}
}

func TestProgressLookups(t *testing.T) {
	s := openTestStore(t)
	seed(t, s,
		`INSERT INTO courses (id, title, slug, published) VALUES ('c1', 'Go', 'go', 1)`,
		`INSERT INTO lessons (id, course_id, title, slug, position, published) VALUES ('l1', 'c1', 'One', 'one', 1, 1)`,
		`INSERT INTO lessons (id, course_id, title, slug, position, published) VALUES ('l2', 'c1', 'Two', 'two', 2, 1)`,
		`INSERT INTO lesson_progress (id, user_id, course_id, lesson_id, completed, updated_at)
                 VALUES ('p1', 'u1', 'c1', 'l1', 1, '2026-08-01 10:00:00')`,
		`INSERT INTO lesson_progress (id, user_id, course_id, lesson_id, completed, updated_at)
                 VALUES ('p2', 'u1', 'c1', 'l2', 0, '2026-08-20 10:00:00')`,
	)
	ctx := context.Background()

	progress, err := s.RecentProgress(ctx, "u1", "c1")
	if err != nil {
		t.Fatalf("recent progress: %v", err)
	}
	if progress == nil || progress.LessonID != "l2" {
		t.Fatalf("expected most recent progress on l2, got %+v", progress)
	}

	completed, err := s.CompletedLessonIDs(ctx, "u1", "c1", 5)
	if err != nil {
		t.Fatalf("completed lessons: %v", err)
	}
	if len(completed) != 1 || completed[0] != "l1" {
		t.Fatalf("expected only l1 completed, got %v", completed)
	}
}

func TestConversationLookups(t *testing.T) {
	s := openTestStore(t)
	seed(t, s,
		`INSERT INTO conversations (id, user_id, course_id, lesson_id, mode) VALUES ('conv1', 'u1', 'c1', 'l1', 'course')`,
		`INSERT INTO conversation_messages (id, conversation_id, role, content, created_at)
                 VALUES ('m1', 'conv1', 'user', 'first', '2026-08-01 10:00:00')`,
		`INSERT INTO conversation_messages (id, conversation_id, role, content, created_at)
                 VALUES ('m2', 'conv1', 'assistant', 'second', '2026-08-01 10:00:05')`,
		`INSERT INTO conversation_messages (id, conversation_id, role, content, created_at)
                 VALUES ('m3', 'conv1', 'user', 'third', '2026-08-01 10:00:10')`,
	)
	ctx := context.Background()

	conv, err := s.Find(ctx, "conv1")
	if err != nil {
		t.Fatalf("find conversation: %v", err)
	}
	if conv.CourseID != "c1" || conv.LessonID != "l1" || conv.Mode != "course" {
		t.Fatalf("conversation metadata wrong: %+v", conv)
	}

	if _, err := s.Find(ctx, "missing"); !errors.Is(err, lms.ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}

	messages, err := s.RecentMessages(ctx, "conv1", 2)
	if err != nil {
		t.Fatalf("recent messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Message != "second" || messages[1].Message != "third" {
		t.Fatalf("expected the newest messages oldest-first, got %+v", messages)
	}
}
