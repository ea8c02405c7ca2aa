package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/verdeando/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider geocodes through the Google Maps API, biased towards one country.
type GoogleProvider struct {
	client  GoogleAPIClient
	country string
	log     *slog.Logger
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyResponse = errors.New("get empty response from Google Maps API")

// NewGoogleProvider wraps a Google Maps client.
func NewGoogleProvider(client GoogleAPIClient, country string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, country: country, log: log}
}

// Geocode resolves an address, first restricted to the configured country and then
// without restriction when the first pass finds nothing.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	scoped := maps.GeocodingRequest{
		Address:  address,
		Region:   gp.country,
		Language: "es",
		Components: map[maps.Component]string{
			maps.ComponentCountry: gp.country,
		},
	}
	coords, err := gp.geocode(ctx, &scoped)
	if !errors.Is(err, ErrEmptyResponse) {
		return coords, err
	}

	gp.log.DebugContext(ctx, "No result within country, retrying globally", "address", address)

	return gp.geocode(ctx, &maps.GeocodingRequest{Address: address, Language: "es"})
}

func (gp *GoogleProvider) geocode(ctx context.Context, req *maps.GeocodingRequest) (*models.Coordinates, error) {
	geocodeResponse, err := gp.client.Geocode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	if len(geocodeResponse) == 0 {
		return nil, ErrEmptyResponse
	}
	location := geocodeResponse[0].Geometry.Location

	return &models.Coordinates{Latitude: location.Lat, Longitude: location.Lng}, nil
}
