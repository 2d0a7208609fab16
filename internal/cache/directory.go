package cache

import (
	"context"
	"time"

	"github.com/comflo/identity/internal/domain/institution"
)

type directorySource interface {
	FindByDomain(ctx context.Context, domain string) (institution.Institution, error)
}

// CachedDirectory fronts the institution directory with a short TTL cache.
// Institutions change rarely and every registration hits the lookup, so
// even a few seconds saves a round trip per signup burst. Misses are not
// cached; an unknown domain stays an error.
type CachedDirectory struct {
	src   directorySource
	cache *Cache
}

func NewCachedDirectory(src directorySource, ttl time.Duration) *CachedDirectory {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &CachedDirectory{
		src:   src,
		cache: New(ttl),
	}
}

func (d *CachedDirectory) FindByDomain(ctx context.Context, domain string) (institution.Institution, error) {
	if v, ok := d.cache.Get(domain); ok {
		if inst, ok := v.(institution.Institution); ok {
			return inst, nil
		}
	}

	inst, err := d.src.FindByDomain(ctx, domain)

	if err != nil {
		return institution.Institution{}, err
	}

	d.cache.Set(domain, inst)

	return inst, nil
}
