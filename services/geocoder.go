package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AddressResolver turns a coordinate into a human-readable address.
type AddressResolver interface {
	ResolveAddress(ctx context.Context, lat, lng float64) (string, error)
}

// NoopResolver is used when no map provider is configured.
type NoopResolver struct{}

func (NoopResolver) ResolveAddress(context.Context, float64, float64) (string, error) {
	return "", nil
}

// AddressCache stores resolved addresses.
type AddressCache interface {
	Get(ctx context.Context, lat, lng float64) (string, bool)
	Set(ctx context.Context, lat, lng float64, address string)
}

// MapboxGeocoder reverse-geocodes through the Mapbox places API. Calls are
// throttled with a token bucket and answers are cached when a cache is set.
type MapboxGeocoder struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	cache   AddressCache
	log     *zap.Logger
}

func NewMapboxGeocoder(baseURL, token string, rps float64, cache AddressCache, log *zap.Logger) *MapboxGeocoder {
	if rps <= 0 {
		rps = 1
	}
	return &MapboxGeocoder{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 5 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		cache:   cache,
		log:     log,
	}
}

type placesResponse struct {
	Features []struct {
		PlaceName string `json:"place_name"`
	} `json:"features"`
}

func (g *MapboxGeocoder) ResolveAddress(ctx context.Context, lat, lng float64) (string, error) {
	if g.cache != nil {
		if addr, ok := g.cache.Get(ctx, lat, lng); ok {
			return addr, nil
		}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("geocode throttled: %w", err)
	}

	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s,%s.json?access_token=%s",
		g.baseURL, formatCoord(lng), formatCoord(lat), url.QueryEscape(g.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("geocode: status %d", resp.StatusCode)
	}

	var out placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("geocode: decode: %w", err)
	}
	if len(out.Features) == 0 {
		return "", nil
	}

	addr := out.Features[0].PlaceName
	if g.cache != nil && addr != "" {
		g.cache.Set(ctx, lat, lng, addr)
	}
	return addr, nil
}

// formatCoord rounds to 5 decimals (about one metre).
func formatCoord(v float64) string {
	return fmt.Sprintf("%.5f", v)
}

// RedisAddressCache keeps resolved addresses in redis.
type RedisAddressCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisAddressCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisAddressCache {
	return &RedisAddressCache{client: client, ttl: ttl, log: log}
}

func addressKey(lat, lng float64) string {
	return "geocode:" + formatCoord(lat) + ":" + formatCoord(lng)
}

func (c *RedisAddressCache) Get(ctx context.Context, lat, lng float64) (string, bool) {
	addr, err := c.client.Get(ctx, addressKey(lat, lng)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("geocode cache read failed", zap.Error(err))
		}
		return "", false
	}
	return addr, true
}

func (c *RedisAddressCache) Set(ctx context.Context, lat, lng float64, address string) {
	if err := c.client.Set(ctx, addressKey(lat, lng), address, c.ttl).Err(); err != nil {
		c.log.Warn("geocode cache write failed", zap.Error(err))
	}
}
