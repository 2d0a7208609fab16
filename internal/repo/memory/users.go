package memory

import (
	"context"
	"sync"
	"time"

	"github.com/comflo/identity/internal/domain/user"
)

// UsersRepo keeps user records in a map, mirroring the projection rules of
// the Postgres repo: default reads blank out both hash columns.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User // keyed by email
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	u, ok := r.items[email]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	u.PasswordHash = ""
	u.RecoveryCodeHash = nil
	return u, nil
}

func (r *UsersRepo) GetByEmailWithPassword(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	u, ok := r.items[email]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	u.RecoveryCodeHash = nil
	return u, nil
}

func (r *UsersRepo) GetByEmailWithRecoveryCode(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	u, ok := r.items[email]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	u.PasswordHash = ""
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[u.Email]; exists {
		return user.User{}, user.ErrEmailTaken
	}

	r.items[u.Email] = u
	return u, nil
}

func (r *UsersRepo) UpdateSessionToken(ctx context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for email, u := range r.items {
		if u.ID == id {
			u.SessionToken = token
			u.UpdatedAt = time.Now().UTC()
			r.items[email] = u
			return nil
		}
	}

	return user.ErrNotFound
}

func (r *UsersRepo) SetRecoveryCode(ctx context.Context, id, codeHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for email, u := range r.items {
		if u.ID == id {
			u.RecoveryCodeHash = &codeHash
			u.UpdatedAt = time.Now().UTC()
			r.items[email] = u
			return nil
		}
	}

	return user.ErrNotFound
}

func (r *UsersRepo) ResetCredentials(ctx context.Context, id, passwordHash, token string, clearRecovery bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for email, u := range r.items {
		if u.ID == id {
			u.PasswordHash = passwordHash
			u.SessionToken = token
			if clearRecovery {
				u.RecoveryCodeHash = nil
			}
			u.UpdatedAt = time.Now().UTC()
			r.items[email] = u
			return nil
		}
	}

	return user.ErrNotFound
}

// Raw returns the stored record with every column, for test assertions.
func (r *UsersRepo) Raw(email string) (user.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[email]
	return u, ok
}
