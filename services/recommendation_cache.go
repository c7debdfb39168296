package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	similarKeyPrefix  = "recommend:similar:"
	similarKeyPattern = similarKeyPrefix + "*"
	scanBatchSize     = 100
	defaultCacheTTL   = 10 * time.Minute
)

// RecommendationCache keeps keyword-ranked similar videos in Redis. Every
// failure is logged and treated as a miss.
type RecommendationCache struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewRecommendationCache returns a cache; a nil client disables caching.
func NewRecommendationCache(rdb redis.UniversalClient, ttl time.Duration) *RecommendationCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RecommendationCache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.GetLogger().Named("recommend-cache"),
	}
}

func similarKey(videoID string, limit int) string {
	return fmt.Sprintf("%s%s:%d", similarKeyPrefix, videoID, limit)
}

// GetSimilar returns the cached list and whether it was found.
func (c *RecommendationCache) GetSimilar(ctx context.Context, videoID string, limit int) ([]types.Video, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, similarKey(videoID, limit)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warnw("Recommendation cache read failed", "videoID", videoID, "error", err)
		}
		return nil, false
	}

	var videos []types.Video
	if err := json.Unmarshal(raw, &videos); err != nil {
		c.logger.Warnw("Discarding undecodable cache entry", "videoID", videoID, "error", err)
		return nil, false
	}
	return videos, true
}

// SetSimilar stores a ranked list.
func (c *RecommendationCache) SetSimilar(ctx context.Context, videoID string, limit int, videos []types.Video) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(videos)
	if err != nil {
		c.logger.Warnw("Failed to encode recommendations", "videoID", videoID, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, similarKey(videoID, limit), raw, c.ttl).Err(); err != nil {
		c.logger.Warnw("Recommendation cache write failed", "videoID", videoID, "error", err)
	}
}

// masterIterator is satisfied by *redis.ClusterClient. SCAN on a cluster
// client only reaches one node, so each master is scanned on its own.
type masterIterator interface {
	ForEachMaster(ctx context.Context, fn func(ctx context.Context, client *redis.Client) error) error
}

// Invalidate drops every cached similar list. Any content change can move
// a video into or out of another video's top list, so all keys go.
func (c *RecommendationCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}

	removed := 0
	var err error
	if cluster, ok := c.rdb.(masterIterator); ok {
		var mu sync.Mutex
		err = cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			n, err := deleteSimilarKeys(ctx, node)
			mu.Lock()
			removed += n
			mu.Unlock()
			return err
		})
	} else {
		removed, err = deleteSimilarKeys(ctx, c.rdb)
	}
	if err != nil {
		c.logger.Warnw("Recommendation cache invalidation incomplete", "keys", removed, "error", err)
		return
	}
	c.logger.Debugw("Recommendation cache invalidated", "keys", removed)
}

// deleteSimilarKeys scans one node and deletes what it finds.
func deleteSimilarKeys(ctx context.Context, node redis.Cmdable) (int, error) {
	var cursor uint64
	removed := 0
	for {
		keys, next, err := node.Scan(ctx, cursor, similarKeyPattern, scanBatchSize).Result()
		if err != nil {
			return removed, fmt.Errorf("scan: %w", err)
		}
		if len(keys) > 0 {
			if err := node.Del(ctx, keys...).Err(); err != nil {
				return removed, fmt.Errorf("delete: %w", err)
			}
			removed += len(keys)
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
