package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/pkg/logger"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const searchCachePrefix = "learning_dashboard:content:"

// SearchCache 检索结果缓存；ttl 是条目的物理保留时间，新鲜度由调用方按 CachedAt 判断
type SearchCache interface {
	Get(ctx context.Context, key string) (*model.CachedContent, bool, error)
	Set(ctx context.Context, key string, entry *model.CachedContent, ttl time.Duration) error
}

type RedisSearchCache struct {
	Redis *redis.Client
}

func NewRedisSearchCache(rdb *redis.Client) *RedisSearchCache {
	return &RedisSearchCache{Redis: rdb}
}

func (c *RedisSearchCache) Get(ctx context.Context, key string) (*model.CachedContent, bool, error) {
	raw, err := c.Redis.Get(ctx, searchCachePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry model.CachedContent
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("decode cached content: %w", err)
	}
	return &entry, true, nil
}

func (c *RedisSearchCache) Set(ctx context.Context, key string, entry *model.CachedContent, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, searchCachePrefix+key, data, ttl).Err()
}

// MemorySearchCache 未配置 Redis 时使用的进程内缓存
type MemorySearchCache struct {
	mu      sync.Mutex
	entries map[string]memoryCacheEntry
	now     func() time.Time
}

type memoryCacheEntry struct {
	content   model.CachedContent
	expiresAt time.Time
}

func NewMemorySearchCache() *MemorySearchCache {
	return &MemorySearchCache{entries: make(map[string]memoryCacheEntry), now: time.Now}
}

func (c *MemorySearchCache) Get(ctx context.Context, key string) (*model.CachedContent, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	content := e.content
	return &content, true, nil
}

func (c *MemorySearchCache) Set(ctx context.Context, key string, entry *model.CachedContent, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryCacheEntry{content: *entry}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

// CachedSearcher 新鲜缓存直接返回；外部失败时退回过期缓存，配额耗尽且无缓存时返回空列表
type CachedSearcher struct {
	Next     ContentSearcher
	Cache    SearchCache
	FreshTTL time.Duration
	StaleTTL time.Duration
	Now      func() time.Time
}

func NewCachedSearcher(next ContentSearcher, cache SearchCache, freshTTL, staleTTL time.Duration) *CachedSearcher {
	if staleTTL < freshTTL {
		staleTTL = freshTTL
	}
	return &CachedSearcher{
		Next:     next,
		Cache:    cache,
		FreshTTL: freshTTL,
		StaleTTL: staleTTL,
		Now:      time.Now,
	}
}

func searchCacheKey(query string, maxResults int) string {
	return fmt.Sprintf("%s_%d", base64.URLEncoding.EncodeToString([]byte(query)), maxResults)
}

func (s *CachedSearcher) Search(ctx context.Context, req ContentSearchRequest) ([]model.ContentItem, error) {
	query := BuildSearchQuery(req)
	key := searchCacheKey(query, req.MaxResults)

	cached, ok, err := s.Cache.Get(ctx, key)
	if err != nil {
		logger.Log.Warn("Content cache read failed", zap.String("query", query), zap.Error(err))
		ok = false
	}
	if ok && s.Now().Sub(cached.CachedAt) < s.FreshTTL {
		logger.Log.Debug("Using cached content", zap.String("query", query))
		return cached.Items, nil
	}

	items, err := s.Next.Search(ctx, req)
	if err != nil {
		if ok {
			logger.Log.Warn("Content search failed, serving expired cache", zap.String("query", query), zap.Error(err))
			return cached.Items, nil
		}
		if errors.Is(err, ErrQuotaExceeded) {
			logger.Log.Warn("Content provider quota exceeded and no cache available", zap.String("query", query))
			return []model.ContentItem{}, nil
		}
		return nil, err
	}

	entry := &model.CachedContent{Items: items, Query: query, CachedAt: s.Now()}
	if err := s.Cache.Set(ctx, key, entry, s.StaleTTL); err != nil {
		logger.Log.Warn("Content cache write failed", zap.String("query", query), zap.Error(err))
	}
	return items, nil
}
