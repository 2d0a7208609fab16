package postgres

import (
	"context"
	"errors"

	"github.com/comflo/identity/internal/domain/institution"
	"github.com/comflo/identity/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InstitutionsRepo is read-only from the credential core's perspective;
// institutions are managed elsewhere.
type InstitutionsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewInstitutionsRepo(pool *pgxpool.Pool, prom *observability.Prom) *InstitutionsRepo {
	return &InstitutionsRepo{pool: pool, prom: prom}
}

func (r *InstitutionsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *InstitutionsRepo) FindByDomain(ctx context.Context, domain string) (institution.Institution, error) {
	var inst institution.Institution

	err := r.observe("institutions.find_by_domain", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, domain, name, created_at, updated_at
		     FROM institutions
		     WHERE domain = $1`,
			domain,
		).Scan(&inst.ID, &inst.Domain, &inst.Name, &inst.CreatedAt, &inst.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return institution.Institution{}, institution.ErrNotFound
		}

		return institution.Institution{}, err
	}

	return inst, nil
}
