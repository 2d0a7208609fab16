package postgres

import (
	"context"
	"errors"

	"github.com/comflo/identity/internal/domain/user"
	"github.com/comflo/identity/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// GetByEmail is the default read: neither hash column is scanned.
func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, name, email, role, institution_id, session_token, created_at, updated_at
	         FROM users
	         WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.Role,
			&u.InstitutionID,
			&u.SessionToken,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// GetByEmailWithPassword adds password_hash for the login flow.
func (r *UsersRepo) GetByEmailWithPassword(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email_with_password", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, name, email, password_hash, role, institution_id, session_token, created_at, updated_at
	         FROM users
	         WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.Role,
			&u.InstitutionID,
			&u.SessionToken,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// GetByEmailWithRecoveryCode adds recovery_code_hash for the reset flow.
func (r *UsersRepo) GetByEmailWithRecoveryCode(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email_with_recovery_code", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, name, email, recovery_code_hash, role, institution_id, session_token, created_at, updated_at
	         FROM users
	         WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.RecoveryCodeHash,
			&u.Role,
			&u.InstitutionID,
			&u.SessionToken,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO users (id, name, email, password_hash, recovery_code_hash, role, institution_id, session_token, created_at, updated_at)
		     VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			u.ID, u.Name, u.Email, u.PasswordHash, u.RecoveryCodeHash, u.Role, u.InstitutionID, u.SessionToken, u.CreatedAt, u.UpdatedAt,
		)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

// The write methods below are intent-specific on purpose: reads exclude the
// hash columns by default, so a whole-record save would clobber whichever
// secret the calling flow never loaded. Each operation's terminal write is a
// single atomic statement per record.

// UpdateSessionToken rotates the persisted session token (login flow).
func (r *UsersRepo) UpdateSessionToken(ctx context.Context, id, token string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("users.update_session_token", func() error {
		tag, err = r.pool.Exec(ctx,
			`UPDATE users
		     SET session_token = $2,
		         updated_at = NOW()
		     WHERE id = $1`,
			id, token,
		)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

// SetRecoveryCode stores the hash of a freshly issued recovery code.
func (r *UsersRepo) SetRecoveryCode(ctx context.Context, id, codeHash string) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("users.set_recovery_code", func() error {
		tag, err = r.pool.Exec(ctx,
			`UPDATE users
		     SET recovery_code_hash = $2,
		         updated_at = NOW()
		     WHERE id = $1`,
			id, codeHash,
		)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

// ResetCredentials replaces the password hash and session token in one
// statement. With clearRecovery the stored recovery code hash is dropped,
// making codes single-use.
func (r *UsersRepo) ResetCredentials(ctx context.Context, id, passwordHash, token string, clearRecovery bool) error {
	var tag pgconn.CommandTag
	var err error

	err = r.observe("users.reset_credentials", func() error {
		tag, err = r.pool.Exec(ctx,
			`UPDATE users
		     SET password_hash = $2,
		         session_token = $3,
		         recovery_code_hash = CASE WHEN $4 THEN NULL ELSE recovery_code_hash END,
		         updated_at = NOW()
		     WHERE id = $1`,
			id, passwordHash, token, clearRecovery,
		)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}
