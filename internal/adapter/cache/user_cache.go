package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-service/internal/domain/user"
)

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get retrieves a user from cache by ID.
	// Returns nil if user is not found in cache.
	Get(ctx context.Context, id string) (*domain.User, error)

	// Set stores a user in cache with the configured TTL.
	Set(ctx context.Context, user *domain.User) error

	// Delete removes a user from cache by ID.
	Delete(ctx context.Context, id string) error
}

// cachedUser is the JSON shape stored in Redis.
type cachedUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
	log       *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache. Keys are scoped to
// namespace so entries written by one store instance are never read by another.
func NewRedisUserCache(client *redis.Client, namespace string, ttl time.Duration, log *zap.Logger) UserCache {
	return &RedisUserCache{
		client:    client,
		namespace: namespace,
		ttl:       ttl,
		log:       log,
	}
}

// cacheKey generates a Redis key for a user ID.
func (c *RedisUserCache) cacheKey(id string) string {
	return fmt.Sprintf("user:%s:%s", c.namespace, id)
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, id string) (*domain.User, error) {
	data, err := c.client.Get(ctx, c.cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.String("user_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	var cu cachedUser
	if err := json.Unmarshal(data, &cu); err != nil {
		c.log.Error("failed to unmarshal cached user", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.String("user_id", id))
	return &domain.User{
		ID:        cu.ID,
		Name:      cu.Name,
		Email:     cu.Email,
		Role:      domain.Role(cu.Role),
		CreatedAt: cu.CreatedAt.UTC(),
		UpdatedAt: cu.UpdatedAt.UTC(),
	}, nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("cannot cache nil user")
	}

	data, err := json.Marshal(cachedUser{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
	if err != nil {
		c.log.Error("failed to marshal user for cache", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, c.cacheKey(user.ID), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.String("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a user from Redis cache.
func (c *RedisUserCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, c.cacheKey(id)).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.String("user_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.String("user_id", id))
	return nil
}
