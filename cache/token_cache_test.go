package cache

import (
	"context"
	"testing"
	"time"

	"Tunelist/core/catalog"

	"github.com/go-redis/redis/v8"
)

func TestTokenEncoding(t *testing.T) {
	in := catalog.Token{AccessToken: "abc", ExpiresAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}

	raw, err := encodeToken(in)
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	out, err := decodeToken(raw)
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if out.AccessToken != in.AccessToken || !out.ExpiresAt.Equal(in.ExpiresAt) {
		t.Errorf("expected %+v, got %+v", in, out)
	}

	if _, err := decodeToken([]byte("{broken")); err == nil {
		t.Error("expected error for corrupt payload")
	}
}

func TestRedisTokenCacheUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisTokenCache(client, "")
	if c.key != DefaultTokenKey {
		t.Errorf("expected default key, got %s", c.key)
	}

	ctx := context.Background()
	c.Set(ctx, catalog.Token{AccessToken: "abc", ExpiresAt: time.Now().Add(time.Hour)})

	if _, ok := c.Get(ctx); ok {
		t.Error("expected a miss when Redis is unreachable")
	}
}

func TestRedisTokenCacheSatisfiesInterface(t *testing.T) {
	var _ catalog.TokenCache = (*RedisTokenCache)(nil)
}
