package services

import (
	"context"
	"time"

	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	dbPingAttempts = 3
	// Pools are allowed to run hot while the instance warms up.
	warmupPeriod         = 5 * time.Minute
	poolDegradedRatio    = 0.8
	poolDegradedRatioNew = 0.95
)

// Pinger is the part of a database pool the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PoolUsage reports acquired and maximum connections of a pool.
type PoolUsage func() (acquired, max int32)

// HealthService aggregates dependency checks into a single status.
type HealthService struct {
	dbPool      Pinger
	redisClient redis.UniversalClient
	version     string
	log         *zap.SugaredLogger
	startTime   time.Time
	poolUsage   PoolUsage
	retryDelay  time.Duration
}

// NewHealthService creates a health service. redisClient may be nil when
// Redis is not configured.
func NewHealthService(dbPool Pinger, redisClient redis.UniversalClient, version string) *HealthService {
	return &HealthService{
		dbPool:      dbPool,
		redisClient: redisClient,
		version:     version,
		log:         logger.GetLogger().Named("health"),
		startTime:   time.Now(),
		retryDelay:  100 * time.Millisecond,
	}
}

// SetPoolUsageGetter enables the connection pool saturation check.
func (h *HealthService) SetPoolUsageGetter(getter PoolUsage) {
	h.poolUsage = getter
}

// CheckHealth checks every dependency. Any DOWN component makes the whole
// service DOWN; otherwise any DEGRADED component makes it DEGRADED.
func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := map[string]types.HealthComponent{
		"database": h.checkDatabase(ctx),
	}
	if h.redisClient != nil {
		components["redis"] = h.checkRedis(ctx)
	}

	return types.HealthCheck{
		Status:     aggregateStatus(components),
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

// Ready reports whether the service can take traffic.
func (h *HealthService) Ready(ctx context.Context) bool {
	return h.CheckHealth(ctx).Status != types.HealthStatusDown
}

func aggregateStatus(components map[string]types.HealthComponent) types.HealthStatus {
	overall := types.HealthStatusUp
	for _, c := range components {
		switch c.Status {
		case types.HealthStatusDown:
			return types.HealthStatusDown
		case types.HealthStatusDegraded:
			overall = types.HealthStatusDegraded
		}
	}
	return overall
}

func (h *HealthService) checkDatabase(ctx context.Context) types.HealthComponent {
	var err error
	for attempt := 0; attempt < dbPingAttempts; attempt++ {
		if err = h.dbPool.Ping(ctx); err == nil {
			break
		}
		if attempt < dbPingAttempts-1 {
			select {
			case <-ctx.Done():
				attempt = dbPingAttempts
			case <-time.After(h.retryDelay):
			}
		}
	}
	if err != nil {
		h.log.Errorw("Database health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Database connection failed after multiple attempts",
		}
	}

	if h.poolUsage != nil {
		acquired, max := h.poolUsage()
		threshold := poolDegradedRatio
		if time.Since(h.startTime) < warmupPeriod {
			threshold = poolDegradedRatioNew
		}
		if max > 0 && float64(acquired)/float64(max) > threshold {
			return types.HealthComponent{
				Status:  types.HealthStatusDegraded,
				Details: "Connection pool near capacity",
			}
		}
	}

	return types.HealthComponent{Status: types.HealthStatusUp}
}

func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Redis connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}
