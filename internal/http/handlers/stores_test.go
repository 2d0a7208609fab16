package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/comflo/identity/internal/domain/store"
	"github.com/comflo/identity/internal/geo"
	"github.com/comflo/identity/internal/http/handlers"
)

type fakeGeocoder struct {
	geocodeFn func(ctx context.Context, query string) (geo.Location, error)
}

func (f *fakeGeocoder) Geocode(ctx context.Context, query string) (geo.Location, error) {
	if f.geocodeFn != nil {
		return f.geocodeFn(ctx, query)
	}

	return geo.Location{}, nil
}

type fakeStoreFinder struct {
	nearestFn func(ctx context.Context, lat, lng float64) (store.Store, error)
}

func (f *fakeStoreFinder) Nearest(ctx context.Context, lat, lng float64) (store.Store, error) {
	if f.nearestFn != nil {
		return f.nearestFn(ctx, lat, lng)
	}

	return store.Store{}, nil
}

func TestNearestStoreHandler(t *testing.T) {
	// Las Vegas strip -> a store roughly 5 miles north
	vegas := geo.Location{Latitude: 36.1147, Longitude: -115.1728}
	northStore := store.Store{
		Name:      "North Vegas Outlet",
		Address:   "100 N Main St",
		City:      "North Las Vegas",
		State:     "NV",
		County:    "Clark",
		Latitude:  36.1989,
		Longitude: -115.1175,
	}

	tests := []struct {
		name        string
		query       string
		geocodeFn   func(ctx context.Context, query string) (geo.Location, error)
		nearestFn   func(ctx context.Context, lat, lng float64) (store.Store, error)
		wantStatus  int
		wantMessage string
		wantUnits   string
	}{
		{
			name:  "nearest store with default units",
			query: "?zip=89109",
			geocodeFn: func(ctx context.Context, query string) (geo.Location, error) {
				if query != "89109" {
					t.Errorf("geocode query = %q, want zip", query)
				}
				return vegas, nil
			},
			nearestFn: func(ctx context.Context, lat, lng float64) (store.Store, error) {
				return northStore, nil
			},
			wantStatus: http.StatusOK,
			wantUnits:  "mi",
		},
		{
			name:  "km units",
			query: "?zip=89109&units=km",
			geocodeFn: func(ctx context.Context, query string) (geo.Location, error) {
				return vegas, nil
			},
			nearestFn: func(ctx context.Context, lat, lng float64) (store.Store, error) {
				return northStore, nil
			},
			wantStatus: http.StatusOK,
			wantUnits:  "km",
		},
		{
			name:  "address used when no zip given",
			query: "?address=4505+S+Maryland+Pkwy",
			geocodeFn: func(ctx context.Context, query string) (geo.Location, error) {
				if query != "4505 S Maryland Pkwy" {
					t.Errorf("geocode query = %q, want the address", query)
				}
				return vegas, nil
			},
			nearestFn: func(ctx context.Context, lat, lng float64) (store.Store, error) {
				return northStore, nil
			},
			wantStatus: http.StatusOK,
			wantUnits:  "mi",
		},
		{
			name:        "missing zip and address",
			query:       "",
			wantStatus:  http.StatusBadRequest,
			wantMessage: "zip or address is required",
		},
		{
			name:  "unknown zip",
			query: "?zip=00000",
			geocodeFn: func(ctx context.Context, query string) (geo.Location, error) {
				return geo.Location{}, geo.ErrNoResults
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "zip code does not exist",
		},
		{
			name:  "no stores near the location",
			query: "?zip=89109",
			geocodeFn: func(ctx context.Context, query string) (geo.Location, error) {
				return vegas, nil
			},
			nearestFn: func(ctx context.Context, lat, lng float64) (store.Store, error) {
				return store.Store{}, store.ErrNotFound
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "we do not have any stores available around this area",
		},
		{
			name:       "invalid units rejected by binding",
			query:      "?zip=89109&units=furlongs",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := handlers.NewStoresHandler(
				&fakeGeocoder{geocodeFn: tc.geocodeFn},
				&fakeStoreFinder{nearestFn: tc.nearestFn},
			)

			r := setupRouter(http.MethodGet, "/stores", h.Nearest)

			req := httptest.NewRequest(http.MethodGet, "/stores"+tc.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}

			env := decodeEnvelope(t, w)

			if tc.wantMessage != "" && env.Message != tc.wantMessage {
				t.Errorf("message = %q, want %q", env.Message, tc.wantMessage)
			}

			if tc.wantStatus != http.StatusOK {
				return
			}

			var resp handlers.NearestStoreResponse

			if err := json.Unmarshal(env.Data, &resp); err != nil {
				t.Fatalf("decoding data: %v", err)
			}

			if resp.Name != northStore.Name {
				t.Errorf("name = %q, want %q", resp.Name, northStore.Name)
			}
			if resp.Units != tc.wantUnits {
				t.Errorf("units = %q, want %q", resp.Units, tc.wantUnits)
			}

			// straight-line distance between the strip and north vegas is
			// about 6 miles / 10 km
			min, max := 4.0, 8.0
			if tc.wantUnits == "km" {
				min, max = 6.0, 13.0
			}

			if resp.Distance < min || resp.Distance > max {
				t.Errorf("distance = %f %s, want between %f and %f", resp.Distance, resp.Units, min, max)
			}
		})
	}
}
