// File path: internal/advisor/ranker.go
package advisor

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/common"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/lms"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/search"
)

const (
	// broadQueryLimit is how many candidates the repository query returns
	// before the local re-rank.
	broadQueryLimit = 25
	defaultLimit    = 5

	levelMatchBoost   = 3.0
	levelMissPenalty  = -0.5
	keywordHitWeight  = 2.0
	ratingWeight      = 1.5
	popularityWeight  = 1.0
	freshnessWeight   = 0.5
	freshnessFloor    = 0.1
	freshnessHorizon  = 30.0
	popularityDivisor = 10.0
)

// ScoredCourse is a candidate course with its auxiliary ranking score.
type ScoredCourse struct {
	lms.Course
	Score float64 `json:"score"`
}

// SemanticSearcher is the optional external vector-search collaborator.
// It is best-effort and never required for correctness.
type SemanticSearcher interface {
	Available() bool
	SearchCourses(ctx context.Context, query string, limit int) ([]lms.Course, error)
}

// SharedCache is the optional distributed cache for course-ranking results.
// A miss is always equivalent to "recompute", never an error.
type SharedCache interface {
	Get(ctx context.Context, key string, out interface{}) bool
	Set(ctx context.Context, key string, value interface{})
}

// Ranker scores and ranks course candidates deterministically. Candidate
// retrieval casts a wide net (synonym-expanded OR query, or the semantic
// collaborator); ranking is always local, decoupled from the storage
// engine's query capabilities.
type Ranker struct {
	courses  lms.CourseRepository
	semantic SemanticSearcher
	shared   SharedCache
	now      func() time.Time
}

type RankerOption func(*Ranker)

// WithSemanticSearch attaches the optional semantic-search collaborator.
func WithSemanticSearch(s SemanticSearcher) RankerOption {
	return func(r *Ranker) { r.semantic = s }
}

// WithSharedCache attaches the optional distributed result cache.
func WithSharedCache(c SharedCache) RankerOption {
	return func(r *Ranker) { r.shared = c }
}

func NewRanker(courses lms.CourseRepository, opts ...RankerOption) *Ranker {
	r := &Ranker{courses: courses, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// SearchCandidates returns up to limit scored courses for the query. The
// semantic collaborator is consulted first when available; any failure or
// empty result falls back to the lexical path. Zero lexical candidates for a
// non-empty query degrade to a top-rated listing.
func (r *Ranker) SearchCandidates(ctx context.Context, query string, limit int) ([]ScoredCourse, error) {
	logger := common.Logger()
	if limit <= 0 {
		limit = defaultLimit
	}
	query = strings.TrimSpace(query)
	cacheKey := fmt.Sprintf("advisor:%s:%d", strings.ToLower(query), limit)
	if r.shared != nil {
		var cached []ScoredCourse
		if r.shared.Get(ctx, cacheKey, &cached) {
			return cached, nil
		}
	}
	keywords := search.ExtractKeywords(query)
	level := DetectLevel(query)

	if r.semantic != nil && r.semantic.Available() && query != "" {
		courses, err := r.semantic.SearchCourses(ctx, query, broadQueryLimit)
		if err != nil {
			logger.Warn("advisor: semantic search failed, falling back to lexical ranker", "error", err)
		} else if len(courses) > 0 {
			ranked := r.rank(courses, keywords, level, limit)
			r.store(ctx, cacheKey, ranked)
			return ranked, nil
		}
	}

	courses, err := r.courses.Search(ctx, lms.CourseFilter{Keywords: expandKeywords(keywords), Limit: broadQueryLimit})
	if err != nil {
		return nil, fmt.Errorf("course search: %w", err)
	}
	if len(courses) == 0 && query != "" {
		// Surface top-rated, most-popular courses rather than an empty
		// recommendation.
		courses, err = r.courses.Search(ctx, lms.CourseFilter{Limit: broadQueryLimit})
		if err != nil {
			return nil, fmt.Errorf("course fallback search: %w", err)
		}
	}
	ranked := r.rank(courses, keywords, level, limit)
	r.store(ctx, cacheKey, ranked)
	return ranked, nil
}

func (r *Ranker) rank(courses []lms.Course, keywords []string, level lms.Level, limit int) []ScoredCourse {
	scored := make([]ScoredCourse, 0, len(courses))
	for _, course := range courses {
		scored = append(scored, ScoredCourse{Course: course, Score: r.ScoreCourse(course, keywords, level)})
	}
	// Stable sort keeps input order as the tie break, so ranking is
	// reproducible across calls.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// ScoreCourse computes the deterministic multi-factor ranking score for a
// course: keyword hits, skill-level alignment, rating, enrollment
// popularity, and publish freshness.
func (r *Ranker) ScoreCourse(course lms.Course, keywords []string, detectedLevel lms.Level) float64 {
	text := strings.ToLower(strings.Join([]string{
		course.Title,
		course.ShortDescription,
		course.Description,
		course.WhatYouLearn,
		course.Category,
		strings.Join(course.Tags, " "),
		string(course.Level),
	}, " "))

	var keywordHits float64
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			keywordHits++
		}
	}

	var levelBoost float64
	if detectedLevel != "" {
		if course.Level == detectedLevel {
			levelBoost = levelMatchBoost
		} else {
			levelBoost = levelMissPenalty
		}
	}

	ratingScore := course.RatingAvg / 5
	popularityScore := math.Log1p(float64(course.EnrolledCount)) / popularityDivisor

	var freshnessScore float64
	if course.PublishedAt != nil {
		days := r.now().Sub(*course.PublishedAt).Hours() / 24
		if days < freshnessHorizon {
			days = freshnessHorizon
		}
		freshnessScore = freshnessHorizon / days
		if freshnessScore < freshnessFloor {
			freshnessScore = freshnessFloor
		}
		if freshnessScore > 1.0 {
			freshnessScore = 1.0
		}
	}

	return keywordHits*keywordHitWeight +
		levelBoost +
		ratingScore*ratingWeight +
		popularityScore*popularityWeight +
		freshnessScore*freshnessWeight
}

func (r *Ranker) store(ctx context.Context, key string, ranked []ScoredCourse) {
	if r.shared == nil || len(ranked) == 0 {
		return
	}
	r.shared.Set(ctx, key, ranked)
}

// CourseMatches projects ranked courses into search matches for the context
// payload, filtering by the course relevance threshold. Ordering follows the
// ranking score, not the relevance used for the threshold.
func CourseMatches(query string, ranked []ScoredCourse) []search.Match {
	matches := make([]search.Match, 0, len(ranked))
	for _, sc := range ranked {
		text := strings.Join([]string{sc.Title, sc.ShortDescription, sc.Category}, " ")
		relevance := search.Score(query, text)
		if relevance < search.ThresholdCourse {
			continue
		}
		excerpt := sc.ShortDescription
		if excerpt == "" {
			excerpt = sc.Description
		}
		matches = append(matches, search.Match{
			Kind:     search.KindCourse,
			CourseID: sc.ID,
			Title:    sc.Title,
			Excerpt:  excerpt,
			Score:    relevance,
			Level:    sc.Level,
		})
	}
	return matches
}
