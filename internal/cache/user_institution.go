package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const userInstitutionKeyPrefix = "user_institution:"

// UserInstitutionCache is the redis hash the worker keeps up to date after
// register/login/reset, so downstream services can resolve a user's
// institution without a DB hit.
type UserInstitutionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewUserInstitutionCache(rdb *redis.Client, ttl time.Duration) *UserInstitutionCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &UserInstitutionCache{rdb: rdb, ttl: ttl}
}

type UserInstitutionEntry struct {
	UserID        string
	Email         string
	Name          string
	Role          string
	InstitutionID string
}

func (c *UserInstitutionCache) Upsert(ctx context.Context, e UserInstitutionEntry) error {
	key := userInstitutionKeyPrefix + e.UserID

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"email":          e.Email,
		"name":           e.Name,
		"role":           e.Role,
		"institution_id": e.InstitutionID,
	})
	pipe.Expire(ctx, key, c.ttl)

	_, err := pipe.Exec(ctx)

	return err
}

func (c *UserInstitutionCache) Get(ctx context.Context, userID string) (UserInstitutionEntry, bool, error) {
	key := userInstitutionKeyPrefix + userID

	m, err := c.rdb.HGetAll(ctx, key).Result()

	if err != nil {
		return UserInstitutionEntry{}, false, err
	}

	if len(m) == 0 {
		return UserInstitutionEntry{}, false, nil
	}

	return UserInstitutionEntry{
		UserID:        userID,
		Email:         m["email"],
		Name:          m["name"],
		Role:          m["role"],
		InstitutionID: m["institution_id"],
	}, true, nil
}
