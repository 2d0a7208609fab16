package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/comflo/identity/internal/config"
	"github.com/comflo/identity/internal/domain/store"
	"github.com/comflo/identity/internal/geo"
	"github.com/gin-gonic/gin"
)

type StoreFinder interface {
	Nearest(ctx context.Context, lat, lng float64) (store.Store, error)
}

// StoresHandler is the store locator: geocode the caller's zip/address,
// find the closest store, report the distance. Unrelated to the
// credential core beyond sharing the transport.
type StoresHandler struct {
	geocoder geo.Geocoder
	stores   StoreFinder
}

func NewStoresHandler(geocoder geo.Geocoder, stores StoreFinder) *StoresHandler {
	return &StoresHandler{geocoder: geocoder, stores: stores}
}

type NearestStoreRequest struct {
	Zip     string `form:"zip"`
	Address string `form:"address"`
	Units   string `form:"units" binding:"omitempty,oneof=mi km"`
}

type NearestStoreResponse struct {
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	City     string  `json:"city"`
	State    string  `json:"state"`
	County   string  `json:"county"`
	Distance float64 `json:"distance"`
	Units    string  `json:"units"`
}

func (h *StoresHandler) Nearest(ctx *gin.Context) {
	var req NearestStoreRequest

	if !BindQuery(ctx, &req) {
		return
	}

	query := req.Address
	if req.Zip != "" {
		query = req.Zip
	}

	if query == "" {
		RespondBadRequest(ctx, "zip or address is required")
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	loc, err := h.geocoder.Geocode(cctx, query)

	if err != nil {
		if errors.Is(err, geo.ErrNoResults) {
			RespondBadRequest(ctx, "zip code does not exist")
			return
		}

		RespondBadRequest(ctx, "An error occured getting stores, please contact an administrator")
		return
	}

	s, err := h.stores.Nearest(cctx, loc.Latitude, loc.Longitude)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondBadRequest(ctx, "we do not have any stores available around this area")
			return
		}

		RespondBadRequest(ctx, "An error occured getting stores, please contact an administrator")
		return
	}

	units := req.Units
	if units == "" {
		units = "mi"
	}

	distance := geo.HaversineMiles(loc.Latitude, loc.Longitude, s.Latitude, s.Longitude)
	if units == "km" {
		distance = geo.MilesToKm(distance)
	}

	RespondSuccess(ctx, http.StatusOK, NearestStoreResponse{
		Name:     s.Name,
		Address:  s.Address,
		City:     s.City,
		State:    s.State,
		County:   s.County,
		Distance: distance,
		Units:    units,
	})
}
