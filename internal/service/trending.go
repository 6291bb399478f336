package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"polytracker/internal/client/gamma"
	"polytracker/internal/config"
	"polytracker/internal/models"
	"polytracker/internal/repository"
)

// EventLister is the slice of the Gamma client the trending refresh needs.
type EventLister interface {
	ListEvents(ctx context.Context, params gamma.ListEventsParams) ([]gamma.Event, error)
}

// TrendingService maintains the trending-categories cache: category score is
// the sum of 24h volumes of the events carrying its tag.
type TrendingService struct {
	Repo   repository.Repository
	Events EventLister
	Config config.TrendingConfig
	Logger *zap.Logger

	Now func() time.Time
}

func (s *TrendingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *TrendingService) Refresh(ctx context.Context) ([]models.TrendingCategory, error) {
	limit := s.Config.FetchLimit
	if limit <= 0 {
		limit = 100
	}
	events, err := s.Events.ListEvents(ctx, gamma.ListEventsParams{
		Limit: limit,
		Order: "volume24hr",
	})
	if err != nil {
		return nil, fmt.Errorf("fetch trending events: %w", err)
	}

	categories := AggregateTrendingCategories(events, s.Config, s.now())
	if err := s.Repo.ReplaceTrendingCategories(ctx, categories); err != nil {
		return nil, fmt.Errorf("replace trending cache: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Info("trending categories refreshed", zap.Int("count", len(categories)))
	}
	return categories, nil
}

func (s *TrendingService) List(ctx context.Context) ([]models.TrendingCategory, error) {
	return s.Repo.ListTrendingCategories(ctx)
}

// AggregateTrendingCategories folds event tags into scored categories,
// drops micro tags below the score/occurrence floors and keeps the top K.
func AggregateTrendingCategories(events []gamma.Event, cfg config.TrendingConfig, computedAt time.Time) []models.TrendingCategory {
	type agg struct {
		label string
		score float64
		count int
	}
	byTag := map[string]*agg{}
	for _, event := range events {
		volume := event.Volume24h
		if volume == 0 {
			volume = event.Volume
		}
		for _, tag := range event.Tags {
			if tag.Slug == "" {
				continue
			}
			entry, ok := byTag[tag.Slug]
			if !ok {
				entry = &agg{}
				byTag[tag.Slug] = entry
			}
			entry.score += volume
			entry.count++
			if entry.label == "" {
				entry.label = tag.Label
			}
		}
	}

	minOccurrences := cfg.MinOccurrences
	if minOccurrences <= 0 {
		minOccurrences = 1
	}
	var categories []models.TrendingCategory
	for slug, entry := range byTag {
		if entry.score < cfg.MinScore || entry.count < minOccurrences {
			continue
		}
		label := entry.label
		if label == "" {
			label = slug
		}
		categories = append(categories, models.TrendingCategory{
			Slug:       slug,
			Label:      label,
			Score:      decimal.NewFromFloat(entry.score),
			Count:      entry.count,
			ComputedAt: computedAt,
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Score.GreaterThan(categories[j].Score)
	})
	topK := cfg.TopK
	if topK <= 0 {
		topK = 20
	}
	if len(categories) > topK {
		categories = categories[:topK]
	}
	return categories
}
