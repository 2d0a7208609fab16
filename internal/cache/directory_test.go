package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/comflo/identity/internal/domain/institution"
)

type countingSource struct {
	calls int
	items map[string]institution.Institution
}

func (s *countingSource) FindByDomain(ctx context.Context, domain string) (institution.Institution, error) {
	s.calls++

	inst, ok := s.items[domain]

	if !ok {
		return institution.Institution{}, institution.ErrNotFound
	}

	return inst, nil
}

func TestCachedDirectoryServesFromCache(t *testing.T) {
	src := &countingSource{items: map[string]institution.Institution{
		"unlv.edu": {ID: "i1", Domain: "unlv.edu", Name: "UNLV"},
	}}

	d := NewCachedDirectory(src, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		inst, err := d.FindByDomain(ctx, "unlv.edu")

		if err != nil {
			t.Fatalf("FindByDomain: %v", err)
		}
		if inst.ID != "i1" {
			t.Fatalf("institution = %+v", inst)
		}
	}

	if src.calls != 1 {
		t.Errorf("source calls = %d, want 1", src.calls)
	}
}

func TestCachedDirectoryDoesNotCacheMisses(t *testing.T) {
	src := &countingSource{items: map[string]institution.Institution{}}

	d := NewCachedDirectory(src, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := d.FindByDomain(ctx, "nowhere.org")

		if !errors.Is(err, institution.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	}

	if src.calls != 2 {
		t.Errorf("source calls = %d, want 2 (misses must reach the source)", src.calls)
	}
}
