package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var ErrNoResults = errors.New("no geocoding results")

type Location struct {
	Latitude  float64
	Longitude float64
}

// Geocoder resolves a free-form address or zip to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Location, error)
}

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleGeocoder calls the Google Geocoding REST API.
type GoogleGeocoder struct {
	apiKey string
	client *http.Client
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		apiKey: apiKey,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type googleGeocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (Location, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleGeocodeURL+"?"+q.Encode(), nil)

	if err != nil {
		return Location{}, err
	}

	resp, err := g.client.Do(req)

	if err != nil {
		return Location{}, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geocoding api status %d", resp.StatusCode)
	}

	var body googleGeocodeResponse

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Location{}, err
	}

	if body.Status == "ZERO_RESULTS" || len(body.Results) == 0 {
		return Location{}, ErrNoResults
	}

	if body.Status != "OK" {
		return Location{}, fmt.Errorf("geocoding api status %q", body.Status)
	}

	loc := body.Results[0].Geometry.Location

	return Location{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
