package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/jungianjournals/journals-backend/logger"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// minRefreshInterval bounds how often an unknown kid can trigger a refetch.
const minRefreshInterval = 30 * time.Second

// ErrJWKSKeyNotFound is returned if the key specified by 'kid' is not found in JWKS.
var ErrJWKSKeyNotFound = errors.New("jwks key not found")

// JWKSCache is a thread-safe cache of the Supabase signing keys.
type JWKSCache struct {
	keys        map[string]jwk.Key
	expiresAt   time.Time
	lastFetch   time.Time
	mutex       sync.RWMutex
	refreshLock sync.Mutex
	jwksURL     string
	anonKey     string
	ttl         time.Duration
	httpClient  *http.Client
}

// NewJWKSCache creates an empty cache. Keys are fetched on first use.
func NewJWKSCache(jwksURL, anonKey string, ttl time.Duration, client *http.Client) *JWKSCache {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &JWKSCache{
		keys:       make(map[string]jwk.Key),
		jwksURL:    jwksURL,
		anonKey:    anonKey,
		ttl:        ttl,
		httpClient: client,
	}
}

// GetKey returns a key by its ID (kid), fetching the JWKS when the cache is
// expired or does not know the kid.
func (c *JWKSCache) GetKey(ctx context.Context, kid string) (jwk.Key, error) {
	c.mutex.RLock()
	key, found := c.keys[kid]
	expired := time.Now().After(c.expiresAt)
	c.mutex.RUnlock()

	if found && !expired {
		return key, nil
	}

	if err := c.refresh(ctx); err != nil {
		if found {
			logger.GetLogger().Warnw("JWKS refresh failed, serving stale key", "kid", kid, "error", err)
			return key, nil
		}
		return nil, fmt.Errorf("failed to refresh JWKS cache for kid %s: %w", kid, err)
	}

	c.mutex.RLock()
	key, found = c.keys[kid]
	c.mutex.RUnlock()
	if !found {
		return nil, fmt.Errorf("%w: kid %q", ErrJWKSKeyNotFound, kid)
	}
	return key, nil
}

// refresh fetches the key set. Concurrent callers share a single fetch.
func (c *JWKSCache) refresh(ctx context.Context) error {
	log := logger.GetLogger()

	c.refreshLock.Lock()
	defer c.refreshLock.Unlock()

	c.mutex.RLock()
	recent := time.Since(c.lastFetch) < minRefreshInterval
	c.mutex.RUnlock()
	if recent {
		return nil
	}

	if c.jwksURL == "" || c.anonKey == "" {
		return fmt.Errorf("JWKS URL or anon key is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create JWKS request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS from %s: %w", c.jwksURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read JWKS response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	keySet, err := jwk.Parse(body)
	if err != nil {
		return fmt.Errorf("failed to parse JWKS keys: %w", err)
	}

	newKeys := make(map[string]jwk.Key)
	it := keySet.Keys(ctx)
	for it.Next(ctx) {
		key, ok := it.Pair().Value.(jwk.Key)
		if !ok || key.KeyID() == "" {
			continue
		}
		newKeys[key.KeyID()] = key
	}

	now := time.Now()
	c.mutex.Lock()
	c.keys = newKeys
	c.lastFetch = now
	c.expiresAt = now.Add(c.ttl)
	c.mutex.Unlock()

	log.Infow("JWKS cache refreshed", "keys_cached", len(newKeys), "expires_at", now.Add(c.ttl).Format(time.RFC3339))
	return nil
}
