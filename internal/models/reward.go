package models

import "time"

// Material is a recyclable waste kind and the points it earns.
type Material struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Reward is a catalog item a user can redeem with points.
type Reward struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PhotoURL    string `json:"photoUrl,omitempty"`
	Points      int    `json:"points"`
	Stock       int    `json:"stock"`
}

// Redemption is a past reward redemption.
type Redemption struct {
	ID         string    `json:"id"`
	RedeemedAt time.Time `json:"redeemedAt"`
	Reward     Reward    `json:"reward"`
}
