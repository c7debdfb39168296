// Package db owns the PostgreSQL connection pool and the embedded schema
// migrations.
package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jungianjournals/journals-backend/logger"
)

// DatabaseClient wraps a pgxpool.Pool and can rebuild it from its config.
type DatabaseClient struct {
	pool       *pgxpool.Pool
	config     *pgxpool.Config
	mu         sync.RWMutex
	maxRetries int
	retryDelay time.Duration
}

// NewDatabaseClient wraps an existing pool. Without a config the pool cannot
// be refreshed.
func NewDatabaseClient(pool *pgxpool.Pool) *DatabaseClient {
	return NewDatabaseClientWithConfig(pool, nil)
}

// NewDatabaseClientWithConfig wraps pool and keeps config for reconnects.
func NewDatabaseClientWithConfig(pool *pgxpool.Pool, config *pgxpool.Config) *DatabaseClient {
	return &DatabaseClient{
		pool:       pool,
		config:     config,
		maxRetries: 5,
		retryDelay: time.Second,
	}
}

// Connect creates the pool, retrying with backoff until the database answers
// a ping or the retries are exhausted.
func Connect(ctx context.Context, config *pgxpool.Config) (*DatabaseClient, error) {
	dc := NewDatabaseClientWithConfig(nil, config)
	if err := dc.reconnect(ctx); err != nil {
		return nil, err
	}
	return dc, nil
}

// GetPool returns the current pool.
func (dc *DatabaseClient) GetPool() *pgxpool.Pool {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return dc.pool
}

// SetMaxRetries sets the number of connection attempts.
func (dc *DatabaseClient) SetMaxRetries(n int) {
	dc.maxRetries = n
}

// SetRetryDelay sets the initial delay between connection attempts.
func (dc *DatabaseClient) SetRetryDelay(d time.Duration) {
	dc.retryDelay = d
}

// RefreshPool closes the current pool and builds a new one from the stored config.
func (dc *DatabaseClient) RefreshPool(ctx context.Context) error {
	if dc.config == nil {
		return fmt.Errorf("cannot refresh pool: database configuration not available")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return dc.reconnect(ctx)
}

func (dc *DatabaseClient) reconnect(ctx context.Context) error {
	log := logger.GetLogger()
	if dc.config == nil {
		return fmt.Errorf("cannot connect: database configuration not available")
	}

	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.pool != nil {
		dc.pool.Close()
		dc.pool = nil
	}

	delay := dc.retryDelay
	var lastErr error
	for attempt := 1; attempt <= dc.maxRetries; attempt++ {
		pool, err := pgxpool.NewWithConfig(ctx, dc.config.Copy())
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = pool.Ping(pingCtx)
			cancel()
			if err == nil {
				dc.pool = pool
				if attempt > 1 {
					log.Infow("Connected to database after retries", "attempt", attempt)
				}
				return nil
			}
			pool.Close()
		}
		lastErr = err

		log.Warnw("Database connection attempt failed",
			"attempt", attempt,
			"max_attempts", dc.maxRetries,
			"error", err)

		if attempt == dc.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("database connect aborted: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay = delay * 3 / 2
	}
	return fmt.Errorf("failed to reconnect after %d attempts: %w", dc.maxRetries, lastErr)
}

// Close releases the pool.
func (dc *DatabaseClient) Close() {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.pool != nil {
		dc.pool.Close()
		dc.pool = nil
	}
}
