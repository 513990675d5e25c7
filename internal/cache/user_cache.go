package cache

import (
	"context"
	"time"

	"github.com/mentorlog/mentorlog-api/internal/models"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"github.com/mentorlog/mentorlog-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const userCacheName = "users"

// UserLoader fetches a user from the source of truth.
type UserLoader func(ctx context.Context, id string) (*models.User, error)

// UserCache keeps recently authenticated users in memory so the auth
// middleware does not hit Postgres on every request.
type UserCache struct {
	cache *gocache.Cache
	load  UserLoader
	ttl   time.Duration
}

// NewUserCache creates a cache whose entries expire after ttl.
func NewUserCache(load UserLoader, ttl time.Duration) *UserCache {
	return &UserCache{
		cache: gocache.New(ttl, 2*ttl),
		load:  load,
		ttl:   ttl,
	}
}

// Get returns a copy of the cached user, loading it on a miss.
func (uc *UserCache) Get(ctx context.Context, id string) (*models.User, error) {
	if data, found := uc.cache.Get(id); found {
		if user, ok := data.(*models.User); ok {
			metrics.CacheHits.WithLabelValues(userCacheName).Inc()
			return cloneUser(user), nil
		}
		logger.Error("Invalid user cache data type", zap.String("user_id", id))
		uc.cache.Delete(id)
	}

	metrics.CacheMisses.WithLabelValues(userCacheName).Inc()
	logger.Debug("User cache miss", zap.String("user_id", id))

	user, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(id, cloneUser(user), uc.ttl)
	metrics.CacheSize.WithLabelValues(userCacheName).Set(float64(uc.cache.ItemCount()))
	return user, nil
}

// Invalidate drops one user. Call it after any change to the user's row.
func (uc *UserCache) Invalidate(id string) {
	uc.cache.Delete(id)
	metrics.CacheSize.WithLabelValues(userCacheName).Set(float64(uc.cache.ItemCount()))
}

// Flush drops every entry.
func (uc *UserCache) Flush() {
	uc.cache.Flush()
	metrics.CacheSize.WithLabelValues(userCacheName).Set(0)
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	cp.Specializations = append([]string(nil), u.Specializations...)
	return &cp
}
