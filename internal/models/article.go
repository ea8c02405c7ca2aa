package models

import "time"

// Article is a community news entry. Relevance is derived on the client and never persisted.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	URL         string    `json:"url"`
	Tag         string    `json:"tag"`
	PublishedAt time.Time `json:"publishedAt"`
	Views       int       `json:"views"`
	Relevance   float64   `json:"relevance"`
}
