package models

// Coordinates represents a geographical point defined by its latitude and longitude.
// It is an immutable value type: copy it, never share a pointer to mutate it.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`  // Latitude of the geographical point.
	Longitude float64 `json:"longitude"` // Longitude of the geographical point.
}
