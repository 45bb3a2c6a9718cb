package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type cacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// reportInvalidator is implemented by CacheService. Entity services call it
// after any write that feeds a report so cached aggregates never outlive
// their inputs.
type reportInvalidator interface {
	InvalidateReports(ctx context.Context) error
}

const reportCachePrefix = "reports:"

// CacheService owns the report cache keyspace.
type CacheService struct {
	cache  cacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewCacheService constructs the service.
func NewCacheService(cache cacheRepository, ttl time.Duration, logger *zap.Logger) *CacheService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{cache: cache, ttl: ttl, logger: logger}
}

// GetReport loads a cached report payload into dest. Returns the cache miss
// error when absent.
func (s *CacheService) GetReport(ctx context.Context, key string, dest interface{}) error {
	return s.cache.Get(ctx, reportCachePrefix+key, dest)
}

// SetReport stores a report payload under the service TTL.
func (s *CacheService) SetReport(ctx context.Context, key string, value interface{}) error {
	return s.cache.Set(ctx, reportCachePrefix+key, value, s.ttl)
}

// InvalidateReports drops every cached report.
func (s *CacheService) InvalidateReports(ctx context.Context) error {
	return s.cache.DeleteByPattern(ctx, reportCachePrefix+"*")
}
