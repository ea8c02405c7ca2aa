package models

import (
	"slices"
	"time"
)

// Event is a community campaign. Exchanges delivered during the event at one of its
// green points earn Multiplier times the usual points.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Code        string    `json:"code,omitempty"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
	Multiplier  float64   `json:"multiplier"`
	GreenPoints []string  `json:"greenPoints"`
}

// Active reports whether now falls within the event, both ends included.
func (e Event) Active(now time.Time) bool {
	return !now.Before(e.StartsAt) && !now.After(e.EndsAt)
}

// Allows reports whether the event applies at greenPointID. An event without
// green points applies everywhere.
func (e Event) Allows(greenPointID string) bool {
	return len(e.GreenPoints) == 0 || slices.Contains(e.GreenPoints, greenPointID)
}
