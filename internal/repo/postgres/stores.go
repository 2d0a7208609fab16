package postgres

import (
	"context"
	"errors"

	"github.com/comflo/identity/internal/domain/store"
	"github.com/comflo/identity/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StoresRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewStoresRepo(pool *pgxpool.Pool, prom *observability.Prom) *StoresRepo {
	return &StoresRepo{pool: pool, prom: prom}
}

func (r *StoresRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Nearest returns the store closest to the given coordinates, using the
// point distance operator. Good enough at store-network scale; callers
// compute the precise great-circle distance afterwards.
func (r *StoresRepo) Nearest(ctx context.Context, lat, lng float64) (store.Store, error) {
	var s store.Store

	err := r.observe("stores.nearest", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, address, city, state, county, latitude, longitude, created_at, updated_at
		     FROM stores
		     ORDER BY point(longitude, latitude) <-> point($1, $2)
		     LIMIT 1`,
			lng, lat,
		).Scan(&s.ID, &s.Name, &s.Address, &s.City, &s.State, &s.County, &s.Latitude, &s.Longitude, &s.CreatedAt, &s.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Store{}, store.ErrNotFound
		}

		return store.Store{}, err
	}

	return s, nil
}
