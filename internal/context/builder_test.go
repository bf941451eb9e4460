// File path: internal/context/builder_test.go
package context

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/advisor"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/lms"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/search"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/transcript"
)

type fakeCatalog struct {
	mu               sync.Mutex
	lessons          []lms.Lesson
	courses          []lms.Course
	enrollment       *lms.Enrollment
	enrolledIDs      []string
	progress         *lms.Progress
	completed        []string
	conversation     *lms.Conversation
	history          []lms.ConversationMessage
	lessonErr        error
	findPublished    int
	courseSearches   int
	mostRecentActive int
}

func (f *fakeCatalog) FindPublished(_ context.Context, filter lms.LessonFilter) ([]lms.Lesson, error) {
	f.mu.Lock()
	f.findPublished++
	f.mu.Unlock()
	if f.lessonErr != nil {
		return nil, f.lessonErr
	}
	var out []lms.Lesson
	for _, lesson := range f.lessons {
		if filter.ID != "" && lesson.ID != filter.ID {
			continue
		}
		if filter.CourseID != "" && lesson.CourseID != filter.CourseID {
			continue
		}
		if len(filter.CourseIDs) > 0 && !containsString(filter.CourseIDs, lesson.CourseID) {
			continue
		}
		if filter.RequireTranscript && strings.TrimSpace(lesson.TranscriptPath) == "" {
			continue
		}
		out = append(out, lesson)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeCatalog) FindByIDs(_ context.Context, ids []string) ([]lms.Lesson, error) {
	var out []lms.Lesson
	for _, id := range ids {
		for _, lesson := range f.lessons {
			if lesson.ID == id {
				out = append(out, lesson)
			}
		}
	}
	return out, nil
}

func (f *fakeCatalog) Search(_ context.Context, filter lms.CourseFilter) ([]lms.Course, error) {
	f.mu.Lock()
	f.courseSearches++
	f.mu.Unlock()
	if len(filter.Keywords) == 0 {
		return f.courses, nil
	}
	var out []lms.Course
	for _, course := range f.courses {
		text := strings.ToLower(course.Title + " " + course.ShortDescription + " " + course.Category)
		for _, kw := range filter.Keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				out = append(out, course)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeCatalog) FindByID(_ context.Context, id string) (*lms.Course, error) {
	for _, course := range f.courses {
		if course.ID == id {
			c := course
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) ActiveCourseIDs(_ context.Context, _ string) ([]string, error) {
	return f.enrolledIDs, nil
}

func (f *fakeCatalog) MostRecentActive(_ context.Context, _ string) (*lms.Enrollment, error) {
	f.mu.Lock()
	f.mostRecentActive++
	f.mu.Unlock()
	return f.enrollment, nil
}

func (f *fakeCatalog) RecentProgress(_ context.Context, _, _ string) (*lms.Progress, error) {
	return f.progress, nil
}

func (f *fakeCatalog) CompletedLessonIDs(_ context.Context, _, _ string, limit int) ([]string, error) {
	if limit > 0 && len(f.completed) > limit {
		return f.completed[:limit], nil
	}
	return f.completed, nil
}

func (f *fakeCatalog) Find(_ context.Context, conversationID string) (*lms.Conversation, error) {
	if f.conversation == nil || f.conversation.ID != conversationID {
		return nil, lms.ErrConversationNotFound
	}
	return f.conversation, nil
}

func (f *fakeCatalog) RecentMessages(_ context.Context, _ string, limit int) ([]lms.ConversationMessage, error) {
	if limit > 0 && len(f.history) > limit {
		return f.history[len(f.history)-limit:], nil
	}
	return f.history, nil
}

type memArtifacts struct {
	files map[string][]byte
}

func (m *memArtifacts) Exists(_ context.Context, path string) (bool, error) {
	_, ok := m.files[path]
	return ok, nil
}

func (m *memArtifacts) Read(_ context.Context, path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("artifact %s not found", path)
	}
	return data, nil
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

const builderSRT = `1
00:00:00,000 --> 00:00:03,000
docker images are built in layers

2
00:00:03,000 --> 00:00:06,000
each layer caches a build step
`

func newTestBuilder(t *testing.T, catalog *fakeCatalog, files map[string][]byte) Builder {
	t.Helper()
	artifacts := &memArtifacts{files: files}
	transcripts := search.NewTranscriptSearcher(catalog, artifacts, transcript.NewCache(artifacts))
	builder, err := NewBuilder(DefaultConfig(), Dependencies{
		Lessons:       catalog,
		Courses:       catalog,
		Enrollments:   catalog,
		Conversations: catalog,
		Transcripts:   transcripts,
		LessonSearch:  search.NewLessonSearcher(catalog),
		Ranker:        advisor.NewRanker(catalog),
	})
	if err != nil {
		t.Fatalf("builder construction failed: %v", err)
	}
	return builder
}

func TestBuildContextCourseModeIsolation(t *testing.T) {
	catalog := &fakeCatalog{
		lessons: []lms.Lesson{
			{ID: "l1", CourseID: "c1", Title: "Docker layers", TranscriptPath: "c1/l1.srt"},
			{ID: "l2", CourseID: "c1", Title: "Docker networking", Description: "docker networking overview"},
		},
		courses:     []lms.Course{{ID: "c1", Title: "Docker course", ShortDescription: "all about docker"}},
		enrolledIDs: []string{"c1"},
	}
	builder := newTestBuilder(t, catalog, map[string][]byte{"c1/l1.srt": []byte(builderSRT)})

	payload, err := builder.BuildContext(context.Background(), Request{
		UserID:   "u1",
		Query:    "docker layers",
		Mode:     ModeCourse,
		LessonID: "l1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload.SearchResults.Transcripts) == 0 {
		t.Fatal("expected transcript matches in course mode")
	}
	if len(payload.SearchResults.Lessons) != 0 || len(payload.SearchResults.Courses) != 0 {
		t.Fatal("course mode must not populate lesson or course buckets")
	}
	for _, m := range payload.SearchResults.Transcripts {
		if m.LessonID != "l1" {
			t.Fatalf("course mode leaked lesson %s", m.LessonID)
		}
	}
	want := len(payload.SearchResults.Transcripts)
	if payload.SearchResults.TotalResults != want {
		t.Fatalf("TotalResults %d does not match bucket sum %d", payload.SearchResults.TotalResults, want)
	}
}

func TestBuildContextCourseModeDescriptionOnlyLesson(t *testing.T) {
	catalog := &fakeCatalog{
		lessons: []lms.Lesson{{
			ID:          "l5",
			CourseID:    "c1",
			Title:       "Recursion basics",
			Description: "recursion broken down with call stacks and base cases",
		}},
		enrolledIDs: []string{"c1"},
	}
	builder := newTestBuilder(t, catalog, nil)
	payload, err := builder.BuildContext(context.Background(), Request{
		UserID:   "u1",
		Query:    "explain recursion",
		Mode:     ModeCourse,
		LessonID: "l5",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	results := payload.SearchResults
	if len(results.Transcripts) != 1 {
		t.Fatalf("expected exactly one transcript match from the lesson description, got %d", len(results.Transcripts))
	}
	if len(results.Lessons) != 0 || len(results.Courses) != 0 {
		t.Fatal("course mode must not populate lesson or course buckets")
	}
	if results.Transcripts[0].LessonID != "l5" {
		t.Fatalf("expected the scoped lesson, got %s", results.Transcripts[0].LessonID)
	}
	if results.TotalResults != 1 {
		t.Fatalf("TotalResults must be 1, got %d", results.TotalResults)
	}
}

func TestBuildContextLessonNotFound(t *testing.T) {
	builder := newTestBuilder(t, &fakeCatalog{}, nil)
	payload, err := builder.BuildContext(context.Background(), Request{
		UserID:   "u1",
		Query:    "docker",
		Mode:     ModeCourse,
		LessonID: "missing",
	})
	if !errors.Is(err, lms.ErrLessonNotFound) {
		t.Fatalf("expected ErrLessonNotFound, got %v", err)
	}
	if payload.UserContext != nil || payload.SearchResults.TotalResults != 0 {
		t.Fatal("payload must be empty on lesson-not-found")
	}
}

func TestBuildContextGeneralModeSkipsRetrieval(t *testing.T) {
	catalog := &fakeCatalog{
		lessons:     []lms.Lesson{{ID: "l1", CourseID: "c1", TranscriptPath: "c1/l1.srt"}},
		enrolledIDs: []string{"c1"},
	}
	builder := newTestBuilder(t, catalog, nil)
	payload, err := builder.BuildContext(context.Background(), Request{
		UserID: "u1",
		Query:  "docker",
		Mode:   ModeGeneral,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.SearchResults.TotalResults != 0 {
		t.Fatal("general mode must carry empty search results")
	}
	if catalog.findPublished != 0 {
		t.Fatalf("general mode must not query lessons, saw %d calls", catalog.findPublished)
	}
}

func TestBuildContextAdvisorMode(t *testing.T) {
	catalog := &fakeCatalog{
		courses: []lms.Course{
			{ID: "c1", Title: "Docker fundamentals", ShortDescription: "containers with docker", RatingAvg: 4.5, EnrolledCount: 500},
			{ID: "c2", Title: "Watercolor painting", ShortDescription: "brushes", RatingAvg: 5, EnrolledCount: 10},
		},
	}
	builder := newTestBuilder(t, catalog, nil)
	payload, err := builder.BuildContext(context.Background(), Request{
		UserID: "u1",
		Query:  "docker",
		Mode:   ModeAdvisor,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload.SearchResults.Courses) == 0 {
		t.Fatal("advisor mode must populate course matches")
	}
	if len(payload.SearchResults.Transcripts) != 0 || len(payload.SearchResults.Lessons) != 0 {
		t.Fatal("advisor mode must not populate transcript or lesson buckets")
	}
	for _, m := range payload.SearchResults.Courses {
		if m.CourseID == "c2" {
			t.Fatal("irrelevant course cleared the relevance threshold")
		}
	}
}

func TestBuildContextDefaultModeMergesBuckets(t *testing.T) {
	catalog := &fakeCatalog{
		lessons: []lms.Lesson{
			{ID: "l1", CourseID: "c1", Title: "Docker layers", TranscriptPath: "c1/l1.srt"},
			{ID: "l2", CourseID: "c1", Title: "Docker networking", Description: "bridges and overlays for docker networking"},
		},
		enrolledIDs: []string{"c1"},
	}
	builder := newTestBuilder(t, catalog, map[string][]byte{"c1/l1.srt": []byte(builderSRT)})
	payload, err := builder.BuildContext(context.Background(), Request{
		UserID: "u1",
		Query:  "docker layers",
		Mode:   ModeDefault,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	results := payload.SearchResults
	if len(results.Transcripts) == 0 {
		t.Fatal("expected transcript matches in default mode")
	}
	if results.TotalResults != len(results.Transcripts)+len(results.Lessons)+len(results.Courses) {
		t.Fatal("TotalResults must equal the bucket sum")
	}
}

func TestBuildContextDegradesOnRetrievalFailure(t *testing.T) {
	catalog := &fakeCatalog{
		lessonErr:   errors.New("catalog down"),
		enrolledIDs: []string{"c1"},
	}
	builder := newTestBuilder(t, catalog, nil)
	payload, err := builder.BuildContext(context.Background(), Request{
		UserID: "u1",
		Query:  "docker",
		Mode:   ModeDefault,
	})
	if err != nil {
		t.Fatalf("retrieval failure must degrade, not propagate: %v", err)
	}
	if payload.SearchResults.TotalResults != 0 {
		t.Fatal("degraded payload must carry empty search results")
	}
	if payload.Query != "docker" || payload.Mode != ModeDefault {
		t.Fatal("degraded payload must keep request metadata")
	}
}

func TestBuildContextCachesOnlySearchResults(t *testing.T) {
	catalog := &fakeCatalog{
		lessons: []lms.Lesson{
			{ID: "l1", CourseID: "c1", Title: "Docker layers", TranscriptPath: "c1/l1.srt"},
		},
		enrolledIDs: []string{"c1"},
		enrollment:  &lms.Enrollment{UserID: "u1", CourseID: "c1", Status: "active"},
		courses:     []lms.Course{{ID: "c1", Title: "Docker course"}},
	}
	builder := newTestBuilder(t, catalog, map[string][]byte{"c1/l1.srt": []byte(builderSRT)})

	req := Request{UserID: "u1", Query: "docker layers", Mode: ModeDefault}
	first, err := builder.BuildContext(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	searchCalls := catalog.findPublished
	second, err := builder.BuildContext(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if catalog.findPublished != searchCalls {
		t.Fatal("second build must serve search results from cache")
	}
	if second.SearchResults.TotalResults != first.SearchResults.TotalResults {
		t.Fatal("cached search results must match the original")
	}
	if catalog.mostRecentActive != 2 {
		t.Fatalf("user context must be recomputed per request, got %d lookups", catalog.mostRecentActive)
	}
	if second.UserContext == nil || second.UserContext.CurrentCourse == nil {
		t.Fatal("cached result must not erase the live user context")
	}
}

func TestBuildContextConversationScope(t *testing.T) {
	catalog := &fakeCatalog{
		lessons: []lms.Lesson{
			{ID: "l7", CourseID: "c9", Title: "Docker layers", Description: "docker image layer caching"},
		},
		conversation: &lms.Conversation{ID: "conv1", UserID: "u1", CourseID: "c9", LessonID: "l7"},
		history: []lms.ConversationMessage{
			{SenderType: "user", Message: "hello"},
			{SenderType: "assistant", Message: "hi, how can I help?"},
		},
	}
	builder := newTestBuilder(t, catalog, nil)
	payload, err := builder.BuildContext(context.Background(), Request{
		UserID:         "u1",
		Query:          "docker layers",
		ConversationID: "conv1",
		Mode:           ModeCourse,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload.ConversationHistory) != 2 {
		t.Fatalf("expected stored history, got %d messages", len(payload.ConversationHistory))
	}
	if len(payload.SearchResults.Transcripts) == 0 {
		t.Fatal("conversation lesson scope must drive the search")
	}
	if payload.SearchResults.Transcripts[0].LessonID != "l7" {
		t.Fatalf("expected conversation lesson l7, got %s", payload.SearchResults.Transcripts[0].LessonID)
	}
}

func TestParseModeFoldsUnknown(t *testing.T) {
	if got := ParseMode("definitely-not-a-mode"); got != ModeDefault {
		t.Fatalf("unknown mode must fold to default, got %s", got)
	}
	if got := ParseMode("advisor"); got != ModeAdvisor {
		t.Fatalf("expected advisor mode, got %s", got)
	}
}
