// File path: internal/transcript/cache.go
package transcript

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/cache"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/common"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/lms"
)

const (
	defaultTTL      = 5 * time.Minute
	defaultCapacity = 100
)

// Cache memoizes parsed transcript segment lists per source artifact.
// Concurrent loads of the same artifact are collapsed into a single read.
type Cache struct {
	artifacts lms.ArtifactStore
	entries   *cache.TTL[[]Segment]
	group     singleflight.Group
}

// NewCache wraps the artifact store with a memoizing loader.
func NewCache(artifacts lms.ArtifactStore) *Cache {
	return &Cache{
		artifacts: artifacts,
		entries:   cache.NewTTL[[]Segment](defaultTTL, defaultCapacity),
	}
}

// Load returns the segment list for the artifact at the given path,
// preferring a pre-parsed sibling artifact and falling back to subtitle
// parsing. When both forms fail the error propagates to the caller.
func (c *Cache) Load(ctx context.Context, artifactPath string) ([]Segment, error) {
	artifactPath = strings.TrimSpace(artifactPath)
	if artifactPath == "" {
		return nil, fmt.Errorf("artifact path required: %w", lms.ErrArtifactUnavailable)
	}
	if segments, ok := c.entries.Get(artifactPath); ok {
		return segments, nil
	}
	value, err, _ := c.group.Do(artifactPath, func() (interface{}, error) {
		if segments, ok := c.entries.Get(artifactPath); ok {
			return segments, nil
		}
		segments, err := c.load(ctx, artifactPath)
		if err != nil {
			return nil, err
		}
		c.entries.Set(artifactPath, segments)
		return segments, nil
	})
	if err != nil {
		return nil, err
	}
	segments, ok := value.([]Segment)
	if !ok {
		return nil, fmt.Errorf("unexpected cache value for %s", artifactPath)
	}
	return segments, nil
}

func (c *Cache) load(ctx context.Context, artifactPath string) ([]Segment, error) {
	logger := common.Logger()
	sibling := SegmentsPath(artifactPath)
	if data, err := c.artifacts.Read(ctx, sibling); err == nil {
		segments, parseErr := ParseSegmentsJSON(data)
		if parseErr == nil {
			return segments, nil
		}
		logger.Warn("transcript: pre-parsed artifact malformed, falling back", "path", sibling, "error", parseErr)
	}
	data, err := c.artifacts.Read(ctx, artifactPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", artifactPath, err, lms.ErrArtifactUnavailable)
	}
	segments, err := ParseSRT(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", artifactPath, err, lms.ErrArtifactUnavailable)
	}
	return segments, nil
}

// SegmentsPath derives the pre-parsed sibling artifact path for a subtitle
// artifact.
func SegmentsPath(artifactPath string) string {
	ext := path.Ext(artifactPath)
	return strings.TrimSuffix(artifactPath, ext) + ".segments.json"
}
