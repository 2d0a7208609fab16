package memory

import (
	"context"
	"sync"
	"time"

	"github.com/comflo/identity/internal/domain/institution"
	"github.com/google/uuid"
)

type InstitutionsRepo struct {
	mu    sync.RWMutex
	items map[string]institution.Institution // keyed by domain
}

func NewInstitutionsRepo() *InstitutionsRepo {
	return &InstitutionsRepo{
		items: make(map[string]institution.Institution),
	}
}

func (r *InstitutionsRepo) Add(domain, name string) institution.Institution {
	now := time.Now().UTC()

	inst := institution.Institution{
		ID:        uuid.NewString(),
		Domain:    domain,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.items[domain] = inst
	r.mu.Unlock()

	return inst
}

func (r *InstitutionsRepo) FindByDomain(ctx context.Context, domain string) (institution.Institution, error) {
	r.mu.RLock()
	inst, ok := r.items[domain]
	r.mu.RUnlock()

	if !ok {
		return institution.Institution{}, institution.ErrNotFound
	}

	return inst, nil
}
