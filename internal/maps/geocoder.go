package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"rideshare/internal/domain"
)

// Geocoder resolves postcodes to coordinates and computes route distances
// using the Google Maps Geocoding and Distance Matrix APIs.
type Geocoder struct {
	client *maps.Client
}

// NewGeocoder creates a new Geocoder with the given API key.
func NewGeocoder(apiKey string) (*Geocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Geocoder{client: client}, nil
}

// Geocode resolves a postcode or address to a Location.
func (g *Geocoder) Geocode(ctx context.Context, postcode string) (domain.Location, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: postcode,
	})
	if err != nil {
		return domain.Location{}, fmt.Errorf("geocoding %q: %w", postcode, err)
	}

	if len(results) == 0 {
		return domain.Location{}, fmt.Errorf("geocoding %q: no results", postcode)
	}

	loc := results[0].Geometry.Location
	return domain.Location{
		Latitude:  loc.Lat,
		Longitude: loc.Lng,
		Address:   results[0].FormattedAddress,
		Postcode:  postcode,
	}, nil
}

// RouteDistanceKm returns the driving distance in kilometers between two
// coordinates.
func (g *Geocoder) RouteDistanceKm(ctx context.Context, origin, dest domain.Location) (float64, error) {
	resp, err := g.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{fmt.Sprintf("%f,%f", origin.Latitude, origin.Longitude)},
		Destinations: []string{fmt.Sprintf("%f,%f", dest.Latitude, dest.Longitude)},
		Units:        maps.UnitsMetric,
		Mode:         maps.TravelModeDriving,
	})
	if err != nil {
		return 0, fmt.Errorf("distance matrix: %w", err)
	}

	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("distance matrix: empty response")
	}

	element := resp.Rows[0].Elements[0]
	if element.Status != "OK" {
		return 0, fmt.Errorf("distance matrix: element status %s", element.Status)
	}

	return float64(element.Distance.Meters) / 1000.0, nil
}
