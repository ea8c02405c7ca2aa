package geocoding

import (
	"context"
	"time"

	"github.com/UnknownOlympus/verdeando/internal/metrics"
	"github.com/UnknownOlympus/verdeando/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and an address string as input,
// and returns the corresponding coordinates and an error if any occurs.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}

// instrumented records the duration of every geocoding call.
type instrumented struct {
	next    Provider
	name    string
	metrics *metrics.Metrics
}

// Instrument wraps a provider so its request durations land in the geocoder histogram.
func Instrument(next Provider, name string, m *metrics.Metrics) Provider {
	return &instrumented{next: next, name: name, metrics: m}
}

func (i *instrumented) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	startTime := time.Now()
	coords, err := i.next.Geocode(ctx, address)
	i.metrics.GeocodeSeconds.WithLabelValues(i.name).Observe(time.Since(startTime).Seconds())

	return coords, err
}
