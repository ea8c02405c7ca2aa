// Package news loads newsletter articles and ranks them by relevance.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/UnknownOlympus/verdeando/internal/models"
)

// Order selects how a feed is sorted.
type Order string

const (
	// ByRelevance puts the article with the highest views-per-hour first.
	ByRelevance Order = "relevance"
	// ByRecency puts the newest article first.
	ByRecency Order = "recent"
)

// Relevance scores an article as views / (hours since publication + 1).
//
// Articles dated in the future count as just published, and negative view counts as zero,
// so the score is never negative and the denominator never drops below one.
func Relevance(article models.Article, now time.Time) float64 {
	hours := max(now.Sub(article.PublishedAt).Hours(), 0)
	views := max(article.Views, 0)

	return float64(views) / (hours + 1)
}

// Rank returns a copy of articles with Relevance filled in, sorted by order.
// Ties keep the backend order.
func Rank(articles []models.Article, now time.Time, order Order) []models.Article {
	ranked := slices.Clone(articles)
	for i := range ranked {
		ranked[i].Relevance = Relevance(ranked[i], now)
	}

	switch order {
	case ByRecency:
		slices.SortStableFunc(ranked, func(a, b models.Article) int {
			return b.PublishedAt.Compare(a.PublishedAt)
		})
	default:
		slices.SortStableFunc(ranked, func(a, b models.Article) int {
			switch {
			case a.Relevance > b.Relevance:
				return -1
			case a.Relevance < b.Relevance:
				return 1
			default:
				return 0
			}
		})
	}

	return ranked
}

// Source lists newsletter articles.
type Source interface {
	ListArticles(ctx context.Context) ([]models.Article, error)
}

// Feed loads and ranks articles.
type Feed struct {
	source Source
	now    func() time.Time
	log    *slog.Logger
}

// NewFeed creates a feed using the wall clock.
func NewFeed(source Source, log *slog.Logger) *Feed {
	return NewFeedWithClock(source, time.Now, log)
}

// NewFeedWithClock allows injecting the clock used for relevance.
func NewFeedWithClock(source Source, now func() time.Time, log *slog.Logger) *Feed {
	return &Feed{source: source, now: now, log: log}
}

// Load fetches the articles and returns them ranked. limit <= 0 returns all of them.
func (f *Feed) Load(ctx context.Context, order Order, limit int) ([]models.Article, error) {
	articles, err := f.source.ListArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	ranked := Rank(articles, f.now(), order)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	f.log.DebugContext(ctx, "News feed loaded", "articles", len(ranked), "order", order)

	return ranked, nil
}
