package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"testlab/internal/cache"
	"testlab/internal/model"
)

// userCacheTTL bounds staleness after out-of-band writes to the users table.
const userCacheTTL = 5 * time.Minute

// CachedUserRepository decorates a UserRepository with cache-aside reads.
// Lookups by ID hit the cache first; writes invalidate the cached entry.
// Cache failures are treated as misses so Redis outages degrade to DB reads.
type CachedUserRepository struct {
	inner UserRepository
	cache cache.Cache
}

var _ UserRepository = (*CachedUserRepository)(nil)

// NewCachedUserRepository wraps inner with the given cache.
func NewCachedUserRepository(inner UserRepository, c cache.Cache) *CachedUserRepository {
	return &CachedUserRepository{inner: inner, cache: c}
}

func userKey(id string) string {
	return fmt.Sprintf("testlab:user:%s", id)
}

// Create inserts through to the repository; nothing is cached until first read.
func (r *CachedUserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	return r.inner.Create(ctx, u)
}

// FindByID returns the cached user when present, otherwise reads the
// repository and fills the cache.
func (r *CachedUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if b, err := r.cache.Get(ctx, userKey(id)); err == nil {
		var u model.User
		if err := json.Unmarshal(b, &u); err == nil {
			return &u, nil
		}
		// Corrupt entry: drop it and fall through to the repository.
		_ = r.cache.Delete(ctx, userKey(id))
	}
	// Misses and cache outages both degrade to a plain repository read.

	u, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(u); err == nil {
		_ = r.cache.Set(ctx, userKey(id), b, userCacheTTL)
	}
	return u, nil
}

// List always reads the repository; page results are not cached.
func (r *CachedUserRepository) List(ctx context.Context, pq PageQuery) (*PageResult[model.User], error) {
	return r.inner.List(ctx, pq)
}

// UpdateAvatarPath writes through and invalidates the cached user.
func (r *CachedUserRepository) UpdateAvatarPath(ctx context.Context, id, avatarPath string) error {
	if err := r.inner.UpdateAvatarPath(ctx, id, avatarPath); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, userKey(id))
	return nil
}

// Delete removes the row and invalidates the cached user.
func (r *CachedUserRepository) Delete(ctx context.Context, id string) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, userKey(id))
	return nil
}
