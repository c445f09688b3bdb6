package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMapboxGeocoderCachesAddresses(t *testing.T) {
	calls := 0
	var gotPath, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("access_token")
		_, _ = w.Write([]byte(`{"features":[{"place_name":"1 Queen St W, Toronto"}]}`))
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cache := NewRedisAddressCache(rdb, time.Hour, zap.NewNop())
	g := NewMapboxGeocoder(srv.URL, "pk.test", 100, cache, zap.NewNop())

	ctx := context.Background()
	addr, err := g.ResolveAddress(ctx, 43.6532, -79.3832)
	require.NoError(t, err)
	assert.Equal(t, "1 Queen St W, Toronto", addr)
	assert.True(t, strings.HasSuffix(gotPath, "/mapbox.places/-79.38320,43.65320.json"), gotPath)
	assert.Equal(t, "pk.test", gotToken)

	addr, err = g.ResolveAddress(ctx, 43.6532, -79.3832)
	require.NoError(t, err)
	assert.Equal(t, "1 Queen St W, Toronto", addr)
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists("geocode:43.65320:-79.38320"))
}

func TestMapboxGeocoderNoFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	g := NewMapboxGeocoder(srv.URL, "pk.test", 100, nil, zap.NewNop())
	addr, err := g.ResolveAddress(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Empty(t, addr)
}

func TestMapboxGeocoderUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewMapboxGeocoder(srv.URL, "bad", 100, nil, zap.NewNop())
	_, err := g.ResolveAddress(context.Background(), 1, 2)
	assert.Error(t, err)
}
