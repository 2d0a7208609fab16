package db

import (
	"context"
	"errors"
	"time"

	"github.com/comflo/identity/internal/config"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSeedInstitution inserts a dev institution so registration has a
// recognized domain to land on. No-op unless both seed vars are set.
func EnsureSeedInstitution(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedInstitutionDomain == "" || cfg.SeedInstitutionName == "" {
		return nil
	}

	// check if the institution exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM institutions WHERE domain = $1`, cfg.SeedInstitutionDomain).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO institutions (id, domain, name, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		`,
		uuid.NewString(), cfg.SeedInstitutionDomain, cfg.SeedInstitutionName, now, now,
	)

	return err
}
