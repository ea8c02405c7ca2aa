// Package events lists the community events and resolves which one applies to an exchange.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/UnknownOlympus/verdeando/internal/models"
)

// Source lists community events.
type Source interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
}

// Filter narrows a listing. The zero value keeps every event.
type Filter struct {
	ActiveOnly   bool   // only events running now
	GreenPointID string // only events that apply at this green point
}

// Calendar loads events and answers which of them are running.
type Calendar struct {
	source Source
	now    func() time.Time
	log    *slog.Logger
}

// NewCalendar creates a calendar using the wall clock.
func NewCalendar(source Source, log *slog.Logger) *Calendar {
	return NewCalendarWithClock(source, time.Now, log)
}

// NewCalendarWithClock allows injecting the clock.
func NewCalendarWithClock(source Source, now func() time.Time, log *slog.Logger) *Calendar {
	return &Calendar{source: source, now: now, log: log}
}

// List fetches the events matching filter, ordered by start date.
func (c *Calendar) List(ctx context.Context, filter Filter) ([]models.Event, error) {
	all, err := c.source.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	now := c.now()
	selected := make([]models.Event, 0, len(all))
	for _, event := range all {
		if filter.ActiveOnly && !event.Active(now) {
			continue
		}
		if filter.GreenPointID != "" && !event.Allows(filter.GreenPointID) {
			continue
		}
		selected = append(selected, event)
	}

	slices.SortStableFunc(selected, func(a, b models.Event) int {
		return a.StartsAt.Compare(b.StartsAt)
	})
	c.log.DebugContext(ctx, "Events loaded", "total", len(all), "selected", len(selected))

	return selected, nil
}

// Multiplier returns the highest multiplier among the events running now at greenPointID,
// or 1 when none applies.
func (c *Calendar) Multiplier(ctx context.Context, greenPointID string) (float64, error) {
	running, err := c.List(ctx, Filter{ActiveOnly: true, GreenPointID: greenPointID})
	if err != nil {
		return 0, err
	}

	multiplier := 1.0
	for _, event := range running {
		multiplier = max(multiplier, event.Multiplier)
	}

	return multiplier, nil
}
