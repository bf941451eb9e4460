// File path: internal/context/builder.go
package context

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/advisor"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/cache"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/common"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/lms"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/search"
)

// Dependencies bundles the collaborators a builder orchestrates.
type Dependencies struct {
	Lessons       lms.LessonRepository
	Courses       lms.CourseRepository
	Enrollments   lms.EnrollmentRepository
	Conversations lms.ConversationRepository
	Transcripts   *search.TranscriptSearcher
	LessonSearch  *search.LessonSearcher
	Ranker        *advisor.Ranker
}

// scope carries the resolved targeting for one request: the explicit lesson,
// the target course from conversation metadata or the active enrollment, and
// the enrolled-course set.
type scope struct {
	lessonID string
	courseID string
	enrolled []string
}

type searchStrategy func(ctx context.Context, query string, sc scope) (SearchResults, error)

type serviceBuilder struct {
	config     Config
	deps       Dependencies
	strategies map[Mode]searchStrategy
	results    *cache.TTL[SearchResults]
}

// NewBuilder wires the provided collaborators into a context builder.
func NewBuilder(cfg Config, deps Dependencies) (Builder, error) {
	if deps.Lessons == nil || deps.Courses == nil || deps.Enrollments == nil {
		return nil, errors.New("lesson, course, and enrollment repositories required")
	}
	if deps.Transcripts == nil || deps.Ranker == nil {
		return nil, errors.New("transcript searcher and ranker required")
	}
	def := DefaultConfig()
	if cfg.ResultCacheTTL <= 0 {
		cfg.ResultCacheTTL = def.ResultCacheTTL
	}
	if cfg.ResultCacheCapacity <= 0 {
		cfg.ResultCacheCapacity = def.ResultCacheCapacity
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = def.HistoryLimit
	}
	if cfg.RecentLessonLimit <= 0 {
		cfg.RecentLessonLimit = def.RecentLessonLimit
	}
	if cfg.LessonMatchLimit <= 0 {
		cfg.LessonMatchLimit = def.LessonMatchLimit
	}
	if cfg.CourseLimit <= 0 {
		cfg.CourseLimit = def.CourseLimit
	}
	b := &serviceBuilder{
		config:  cfg,
		deps:    deps,
		results: cache.NewTTL[SearchResults](cfg.ResultCacheTTL, cfg.ResultCacheCapacity),
	}
	// The mode-to-behavior mapping is a closed table; ParseMode folds
	// unknown modes into ModeDefault before lookup.
	b.strategies = map[Mode]searchStrategy{
		ModeGeneral: b.searchNone,
		ModeCourse:  b.searchCourseScoped,
		ModeAdvisor: b.searchAdvisor,
		ModeDefault: b.searchDefault,
	}
	return b, nil
}

// BuildContext resolves live user state, picks the mode strategy, and
// assembles the payload. Retrieval is best-effort: collaborator failures
// degrade to empty results, and only a lesson-scoped search for a
// nonexistent lesson propagates as an error.
func (b *serviceBuilder) BuildContext(ctx context.Context, req Request) (Payload, error) {
	logger := common.Logger()
	query := strings.TrimSpace(req.Query)
	mode := ParseMode(string(req.Mode))

	var (
		wg       sync.WaitGroup
		userCtx  *lms.UserLearningContext
		enrolled []string
		conv     *lms.Conversation
		history  []lms.ConversationMessage
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		userCtx = b.learningContext(ctx, req.UserID)
	}()
	go func() {
		defer wg.Done()
		ids, err := b.deps.Enrollments.ActiveCourseIDs(ctx, req.UserID)
		if err != nil {
			logger.Warn("context: enrolled course lookup failed", "user", req.UserID, "error", err)
			return
		}
		enrolled = ids
	}()
	go func() {
		defer wg.Done()
		conv, history = b.conversationState(ctx, req.ConversationID)
	}()
	wg.Wait()

	sc := scope{lessonID: strings.TrimSpace(req.LessonID), enrolled: enrolled}
	if conv != nil {
		if sc.lessonID == "" {
			sc.lessonID = conv.LessonID
		}
		sc.courseID = conv.CourseID
	}
	if sc.courseID == "" && userCtx != nil && userCtx.CurrentCourse != nil {
		sc.courseID = userCtx.CurrentCourse.ID
	}

	payload := Payload{
		UserContext:         userCtx,
		ConversationHistory: history,
		Query:               query,
		Mode:                mode,
	}

	// General mode does no retrieval, so there is nothing worth caching.
	useCache := mode != ModeGeneral
	key := b.resultCacheKey(mode, query, sc)
	if useCache {
		if cached, ok := b.results.Get(key); ok {
			payload.SearchResults = cached
			return payload, nil
		}
	}

	results, err := b.strategies[mode](ctx, query, sc)
	if err != nil {
		if errors.Is(err, lms.ErrLessonNotFound) {
			return Payload{}, err
		}
		logger.Warn("context: retrieval failed, returning degraded context", "mode", mode, "error", err)
		payload.SearchResults = SearchResults{}
		return payload, nil
	}
	results.TotalResults = len(results.Transcripts) + len(results.Lessons) + len(results.Courses)
	if useCache {
		b.results.Set(key, results)
	}
	payload.SearchResults = results
	return payload, nil
}

func (b *serviceBuilder) SearchCandidateCourses(ctx context.Context, query string, limit int) ([]advisor.ScoredCourse, error) {
	if limit <= 0 {
		limit = b.config.CourseLimit
	}
	return b.deps.Ranker.SearchCandidates(ctx, query, limit)
}

func (b *serviceBuilder) searchNone(context.Context, string, scope) (SearchResults, error) {
	return SearchResults{}, nil
}

// searchCourseScoped restricts retrieval to the target lesson's transcript;
// there is deliberately no course-level fallback so answers cannot be
// contaminated by neighboring lessons.
func (b *serviceBuilder) searchCourseScoped(ctx context.Context, query string, sc scope) (SearchResults, error) {
	if sc.lessonID == "" {
		return b.searchDefault(ctx, query, sc)
	}
	matches, err := b.deps.Transcripts.Search(ctx, query, search.Options{LessonID: sc.lessonID})
	if err != nil {
		return SearchResults{}, err
	}
	return SearchResults{Transcripts: matches}, nil
}

func (b *serviceBuilder) searchAdvisor(ctx context.Context, query string, _ scope) (SearchResults, error) {
	ranked, err := b.deps.Ranker.SearchCandidates(ctx, query, b.config.CourseLimit)
	if err != nil {
		return SearchResults{}, err
	}
	return SearchResults{Courses: advisor.CourseMatches(query, ranked)}, nil
}

// searchDefault fans the transcript and lesson searches out concurrently;
// neither depends on the other and joining them bounds end-to-end latency.
func (b *serviceBuilder) searchDefault(ctx context.Context, query string, sc scope) (SearchResults, error) {
	logger := common.Logger()
	var (
		wg          sync.WaitGroup
		transcripts []search.Match
		lessons     []search.Match
		tErr, lErr  error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		transcripts, tErr = b.deps.Transcripts.Search(ctx, query, search.Options{
			CourseID:          sc.courseID,
			EnrolledCourseIDs: sc.enrolled,
		})
	}()
	if b.deps.LessonSearch != nil {
		courseIDs := sc.enrolled
		if sc.courseID != "" {
			courseIDs = []string{sc.courseID}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			lessons, lErr = b.deps.LessonSearch.Search(ctx, query, courseIDs, b.config.LessonMatchLimit)
		}()
	}
	wg.Wait()
	if tErr != nil && lErr != nil {
		return SearchResults{}, tErr
	}
	if tErr != nil {
		logger.Warn("context: transcript search failed, keeping lesson matches", "error", tErr)
	}
	if lErr != nil {
		logger.Warn("context: lesson search failed, keeping transcript matches", "error", lErr)
	}
	return SearchResults{Transcripts: transcripts, Lessons: lessons}, nil
}

// learningContext derives the user's live learning state from the most
// recently accessed active enrollment. It is recomputed on every call and
// must never be served from cache.
func (b *serviceBuilder) learningContext(ctx context.Context, userID string) *lms.UserLearningContext {
	logger := common.Logger()
	out := &lms.UserLearningContext{}
	if strings.TrimSpace(userID) == "" {
		return out
	}
	enrollment, err := b.deps.Enrollments.MostRecentActive(ctx, userID)
	if err != nil {
		logger.Warn("context: enrollment lookup failed", "user", userID, "error", err)
		return out
	}
	if enrollment == nil {
		return out
	}
	if course, err := b.deps.Courses.FindByID(ctx, enrollment.CourseID); err != nil {
		logger.Warn("context: current course lookup failed", "course", enrollment.CourseID, "error", err)
	} else {
		out.CurrentCourse = course
	}
	progress, err := b.deps.Enrollments.RecentProgress(ctx, userID, enrollment.CourseID)
	if err != nil {
		logger.Warn("context: progress lookup failed", "user", userID, "error", err)
	} else if progress != nil {
		if lessons, err := b.deps.Lessons.FindByIDs(ctx, []string{progress.LessonID}); err == nil && len(lessons) > 0 {
			lesson := lessons[0]
			out.CurrentLesson = &lesson
		}
	}
	completed, err := b.deps.Enrollments.CompletedLessonIDs(ctx, userID, enrollment.CourseID, b.config.RecentLessonLimit)
	if err != nil {
		logger.Warn("context: completed lesson lookup failed", "user", userID, "error", err)
		return out
	}
	if len(completed) > 0 {
		if lessons, err := b.deps.Lessons.FindByIDs(ctx, completed); err == nil {
			out.RecentLessons = lessons
		}
	}
	return out
}

func (b *serviceBuilder) conversationState(ctx context.Context, conversationID string) (*lms.Conversation, []lms.ConversationMessage) {
	logger := common.Logger()
	if b.deps.Conversations == nil || strings.TrimSpace(conversationID) == "" {
		return nil, nil
	}
	conv, err := b.deps.Conversations.Find(ctx, conversationID)
	if err != nil {
		logger.Warn("context: conversation lookup failed", "conversation", conversationID, "error", err)
		return nil, nil
	}
	history, err := b.deps.Conversations.RecentMessages(ctx, conversationID, b.config.HistoryLimit)
	if err != nil {
		logger.Warn("context: history lookup failed", "conversation", conversationID, "error", err)
		return conv, nil
	}
	return conv, history
}

func (b *serviceBuilder) resultCacheKey(mode Mode, query string, sc scope) string {
	enrolled := append([]string(nil), sc.enrolled...)
	sort.Strings(enrolled)
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		mode,
		strings.ToLower(query),
		sc.lessonID,
		sc.courseID,
		strings.Join(enrolled, ","),
	)
}
