package cached

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-service/internal/adapter/cache"
	domain "user-service/internal/domain/user"
	"user-service/internal/usecase/user"
)

// CachedUserRepository implements user.Repository with caching support.
// It wraps a storage repository and a cache implementation; cache failures
// never fail a request, they only fall back to the wrapped repository.
type CachedUserRepository struct {
	repo  user.Repository
	cache cache.UserCache
	log   *zap.Logger
	group singleflight.Group
}

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(repo user.Repository, cache cache.UserCache, log *zap.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create delegates to the wrapped repository.
func (r *CachedUserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.repo.Create(ctx, u)
}

// GetByID retrieves a user by ID using Cache-Aside pattern.
func (r *CachedUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if cachedUser, err := r.cache.Get(ctx, id); err != nil {
		r.log.Warn("cache get error, falling back to repository", zap.String("id", id), zap.Error(err))
	} else if cachedUser != nil {
		return cachedUser, nil
	}

	// Cache miss - use single-flight to prevent stampede
	result, err, _ := r.group.Do("user:"+id, func() (any, error) {
		u, err := r.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := r.cache.Set(ctx, u); err != nil {
			r.log.Warn("failed to cache user", zap.String("id", id), zap.Error(err))
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	// Shared results are copied so callers never alias each other.
	u := *result.(*domain.User)
	return &u, nil
}

// GetByEmail delegates to the wrapped repository.
func (r *CachedUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.repo.GetByEmail(ctx, email)
}

// Update updates the user and invalidates the cache.
func (r *CachedUserRepository) Update(ctx context.Context, u *domain.User) error {
	if err := r.repo.Update(ctx, u); err != nil {
		return err
	}

	r.invalidate(ctx, u.ID, "update")
	return nil
}

// Delete deletes the user and invalidates the cache.
func (r *CachedUserRepository) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, id, "delete")
	return nil
}

// List delegates to the wrapped repository.
func (r *CachedUserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.repo.List(ctx)
}

func (r *CachedUserRepository) invalidate(ctx context.Context, id, op string) {
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cache", zap.String("op", op), zap.String("id", id), zap.Error(err))
	}
}
