package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds configuration for RedisPublisher
type Config struct {
	Channel          string
	RecentKey        string
	RecentLimit      int
	PublishTimeout   time.Duration
	SubscribeTimeout time.Duration
	EventBufferSize  int
}

// DefaultConfig returns default configuration values
func DefaultConfig() Config {
	return Config{
		Channel:          "journals:activity",
		RecentKey:        "journals:activity:recent",
		RecentLimit:      50,
		PublishTimeout:   5 * time.Second,
		SubscribeTimeout: 5 * time.Second,
		EventBufferSize:  64,
	}
}

// metrics holds Prometheus metrics for the publisher
type metrics struct {
	publishLatency    prometheus.Histogram
	errorCount        *prometheus.CounterVec
	eventCount        *prometheus.CounterVec
	activeSubscribers prometheus.Gauge
}

var (
	metricsInstance *metrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

func newMetrics() *metrics {
	metricsOnce.Do(func() {
		metricsInstance = &metrics{
			publishLatency: promauto.With(defaultRegistry).NewHistogram(prometheus.HistogramOpts{
				Name:    "activity_publish_duration_seconds",
				Help:    "Time taken to publish activity events",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			}),
			errorCount: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "activity_errors_total",
				Help: "Total number of activity stream errors",
			}, []string{"operation", "type"}),
			eventCount: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "activity_events_total",
				Help: "Total number of activity events by operation and type",
			}, []string{"operation", "type"}),
			activeSubscribers: promauto.With(defaultRegistry).NewGauge(prometheus.GaugeOpts{
				Name: "activity_active_subscribers",
				Help: "Current number of dashboard subscribers",
			}),
		}
	})
	return metricsInstance
}

func resetMetricsForTesting() {
	defaultRegistry = prometheus.NewRegistry()
	metricsInstance = nil
	metricsOnce = sync.Once{}
}

// RedisPublisher implements types.ActivityPublisher using Redis Pub/Sub for
// live delivery and a capped list for the recent history.
type RedisPublisher struct {
	rdb     redis.UniversalClient
	log     *zap.SugaredLogger
	metrics *metrics
	config  Config
	mu      sync.RWMutex
	subs    map[string]*subscription
	wg      sync.WaitGroup
}

type subscription struct {
	pubsub    *redis.PubSub
	cancelCtx context.CancelFunc
	closeOnce sync.Once
}

var _ types.ActivityPublisher = (*RedisPublisher)(nil)

// NewRedisPublisher creates a new RedisPublisher instance
func NewRedisPublisher(rdb redis.UniversalClient, cfg ...Config) *RedisPublisher {
	config := DefaultConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}

	return &RedisPublisher{
		rdb:     rdb,
		log:     logger.GetLogger().Named("events"),
		metrics: newMetrics(),
		config:  config,
		subs:    make(map[string]*subscription),
	}
}

// Publish broadcasts an activity and prepends it to the recent history.
func (p *RedisPublisher) Publish(ctx context.Context, activity types.Activity) error {
	start := time.Now()
	defer func() {
		p.metrics.publishLatency.Observe(time.Since(start).Seconds())
	}()

	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.Timestamp.IsZero() {
		activity.Timestamp = time.Now().UTC()
	}
	if err := activity.Validate(); err != nil {
		p.metrics.errorCount.WithLabelValues("publish", "validation").Inc()
		return fmt.Errorf("invalid activity: %w", err)
	}

	data, err := json.Marshal(activity)
	if err != nil {
		p.metrics.errorCount.WithLabelValues("publish", "marshal").Inc()
		return fmt.Errorf("marshal activity: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
	defer cancel()

	pipe := p.rdb.TxPipeline()
	pipe.Publish(ctx, p.config.Channel, data)
	pipe.LPush(ctx, p.config.RecentKey, data)
	pipe.LTrim(ctx, p.config.RecentKey, 0, int64(p.config.RecentLimit-1))
	if _, err := pipe.Exec(ctx); err != nil {
		p.metrics.errorCount.WithLabelValues("publish", "redis").Inc()
		return fmt.Errorf("redis publish: %w", err)
	}

	p.metrics.eventCount.WithLabelValues("publish", string(activity.Type)).Inc()
	return nil
}

// Recent returns up to limit activities, newest first. Entries that fail to
// decode are skipped.
func (p *RedisPublisher) Recent(ctx context.Context, limit int) ([]types.Activity, error) {
	if limit <= 0 {
		return []types.Activity{}, nil
	}
	raw, err := p.rdb.LRange(ctx, p.config.RecentKey, 0, int64(limit-1)).Result()
	if err != nil {
		p.metrics.errorCount.WithLabelValues("recent", "redis").Inc()
		return nil, fmt.Errorf("redis lrange: %w", err)
	}

	out := make([]types.Activity, 0, len(raw))
	for _, item := range raw {
		var a types.Activity
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			p.metrics.errorCount.WithLabelValues("recent", "unmarshal").Inc()
			p.log.Warnw("Skipping undecodable activity", "error", err)
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Subscribe starts relaying activities to a buffered channel. The channel is
// closed on Unsubscribe or Shutdown.
func (p *RedisPublisher) Subscribe(ctx context.Context, subscriberID string, filters ...types.ActivityType) (<-chan types.Activity, error) {
	p.mu.Lock()
	if _, exists := p.subs[subscriberID]; exists {
		p.mu.Unlock()
		p.metrics.errorCount.WithLabelValues("subscribe", "duplicate").Inc()
		return nil, fmt.Errorf("subscription already exists for %s", subscriberID)
	}

	pubsub := p.rdb.Subscribe(ctx, p.config.Channel)
	subCtx, cancel := context.WithCancel(context.Background())
	p.subs[subscriberID] = &subscription{pubsub: pubsub, cancelCtx: cancel}
	p.mu.Unlock()

	p.metrics.activeSubscribers.Inc()

	activities := make(chan types.Activity, p.config.EventBufferSize)
	readyCh := make(chan struct{})

	p.wg.Add(1)
	go p.processMessages(subCtx, pubsub, activities, filters, subscriberID, readyCh)

	select {
	case <-readyCh:
	case <-time.After(p.config.SubscribeTimeout):
		p.log.Warnw("Subscription ready timeout", "subscriber", subscriberID)
	case <-ctx.Done():
		_ = p.Unsubscribe(context.Background(), subscriberID)
		return nil, ctx.Err()
	}

	return activities, nil
}

func (p *RedisPublisher) processMessages(ctx context.Context, pubsub *redis.PubSub, out chan<- types.Activity, filters []types.ActivityType, subscriberID string, readyCh chan<- struct{}) {
	defer p.wg.Done()
	defer func() {
		p.mu.RLock()
		sub, exists := p.subs[subscriberID]
		p.mu.RUnlock()

		if exists {
			sub.closeOnce.Do(func() {
				if err := pubsub.Close(); err != nil {
					p.log.Errorw("Error closing pubsub", "error", err, "subscriber", subscriberID)
				}
			})
		}

		close(out)
		p.metrics.activeSubscribers.Dec()
		p.log.Infow("Subscription closed", "subscriber", subscriberID)
	}()

	ch := pubsub.Channel()
	close(readyCh)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var activity types.Activity
			if err := json.Unmarshal([]byte(msg.Payload), &activity); err != nil {
				p.metrics.errorCount.WithLabelValues("process", "unmarshal").Inc()
				p.log.Errorw("Failed to unmarshal activity", "error", err, "subscriber", subscriberID)
				continue
			}

			if !matchesFilters(activity.Type, filters) {
				continue
			}

			// Slow consumers lose activities rather than blocking the relay.
			select {
			case out <- activity:
				p.metrics.eventCount.WithLabelValues("receive", string(activity.Type)).Inc()
			default:
				p.metrics.errorCount.WithLabelValues("process", "channel_full").Inc()
				p.log.Warnw("Dropped activity due to full channel", "subscriber", subscriberID, "type", activity.Type)
			}
		}
	}
}

func matchesFilters(t types.ActivityType, filters []types.ActivityType) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if f == t {
			return true
		}
	}
	return false
}

// Unsubscribe removes a subscription
func (p *RedisPublisher) Unsubscribe(_ context.Context, subscriberID string) error {
	p.mu.Lock()
	sub, exists := p.subs[subscriberID]
	if !exists {
		p.mu.Unlock()
		return fmt.Errorf("no subscription found for %s", subscriberID)
	}

	sub.cancelCtx()
	sub.closeOnce.Do(func() {
		if err := sub.pubsub.Close(); err != nil {
			p.log.Errorw("Error closing pubsub during unsubscribe", "error", err, "subscriber", subscriberID)
		}
	})

	delete(p.subs, subscriberID)
	p.mu.Unlock()

	return nil
}

// Shutdown cancels every subscription and waits for the relays to exit.
func (p *RedisPublisher) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	localSubs := p.subs
	p.subs = make(map[string]*subscription)
	p.mu.Unlock()

	p.log.Infow("Shutting down RedisPublisher", "subscriptions", len(localSubs))
	for _, sub := range localSubs {
		sub.cancelCtx()
		sub.closeOnce.Do(func() { _ = sub.pubsub.Close() })
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
