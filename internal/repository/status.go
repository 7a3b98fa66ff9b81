// Package repository combines the Yatter API with the local timeline cache.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Mr-Dark-debug/yatter/internal/database"
	"github.com/Mr-Dark-debug/yatter/internal/model"
)

// TimelineSource fetches statuses from the server.
type TimelineSource interface {
	PublicTimeline(ctx context.Context, q model.TimelineQuery) ([]model.Status, error)
}

// ContentFormatter converts server content into display text.
type ContentFormatter interface {
	PlainText(raw string) string
}

// StatusRepository is what the timeline screen and the sync poller read.
type StatusRepository interface {
	FetchPublicTimeline(ctx context.Context) ([]model.Status, error)
	CachedPublicTimeline(ctx context.Context) ([]model.Status, error)
}

// StatusRepositoryImpl is the API- and cache-backed StatusRepository.
type StatusRepositoryImpl struct {
	source    TimelineSource
	cache     database.TimelineCache
	formatter ContentFormatter
	limit     int
	logger    *slog.Logger
}

// NewStatusRepository creates a repository fetching up to limit statuses
// per call. A nil cache disables caching.
func NewStatusRepository(source TimelineSource, cache database.TimelineCache, formatter ContentFormatter, limit int, logger *slog.Logger) *StatusRepositoryImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusRepositoryImpl{
		source:    source,
		cache:     cache,
		formatter: formatter,
		limit:     limit,
		logger:    logger,
	}
}

// FetchPublicTimeline fetches the public timeline in server order and
// refreshes the cache. A failed cache write is logged, not returned.
func (r *StatusRepositoryImpl) FetchPublicTimeline(ctx context.Context) ([]model.Status, error) {
	statuses, err := r.source.PublicTimeline(ctx, model.TimelineQuery{Limit: r.limit})
	if err != nil {
		return nil, err
	}

	if r.formatter != nil {
		for i := range statuses {
			statuses[i].Content = r.formatter.PlainText(statuses[i].Content)
		}
	}

	if r.cache != nil {
		if err := r.cache.SaveTimeline(ctx, statuses); err != nil {
			r.logger.Warn("failed to cache public timeline",
				slog.Int("statuses", len(statuses)),
				slog.String("error", err.Error()),
			)
		}
	}

	return statuses, nil
}

// CachedPublicTimeline returns the last cached timeline, or nil when
// caching is disabled.
func (r *StatusRepositoryImpl) CachedPublicTimeline(ctx context.Context) ([]model.Status, error) {
	if r.cache == nil {
		return nil, nil
	}
	statuses, err := r.cache.LoadTimeline(ctx, r.limit)
	if err != nil {
		return nil, fmt.Errorf("loading cached timeline: %w", err)
	}
	return statuses, nil
}
