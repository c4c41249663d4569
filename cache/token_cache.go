package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"Tunelist/core/catalog"
	"Tunelist/logger"

	"github.com/go-redis/redis/v8"
)

// DefaultTokenKey 是 catalog token 在 Redis 中的键
const DefaultTokenKey = "tunelist:catalog:token"

// RedisTokenCache shares the catalog token between server instances.
// Backend errors are logged and reported as a miss, so the validator falls
// back to acquiring a fresh token.
type RedisTokenCache struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

type storedToken struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// NewRedisTokenCache 创建基于 Redis 的 token 缓存
func NewRedisTokenCache(client *redis.Client, key string) *RedisTokenCache {
	if key == "" {
		key = DefaultTokenKey
	}
	return &RedisTokenCache{client: client, key: key, now: time.Now}
}

// WithClock overrides the clock used for expiry checks.
func (c *RedisTokenCache) WithClock(now func() time.Time) *RedisTokenCache {
	c.now = now
	return c
}

// Get returns the stored token while it is still valid.
func (c *RedisTokenCache) Get(ctx context.Context) (catalog.Token, bool) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("[TokenCache] 读取 Redis 失败，视为未命中", logger.ErrorField(err))
		}
		return catalog.Token{}, false
	}

	token, err := decodeToken(raw)
	if err != nil {
		logger.Warn("[TokenCache] token 数据损坏，视为未命中", logger.ErrorField(err))
		return catalog.Token{}, false
	}
	if !token.ValidAt(c.now()) {
		return catalog.Token{}, false
	}
	return token, true
}

// Set replaces the stored token. The key expires together with the token.
func (c *RedisTokenCache) Set(ctx context.Context, token catalog.Token) {
	ttl := token.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		c.client.Del(ctx, c.key)
		return
	}

	raw, err := encodeToken(token)
	if err != nil {
		logger.Error("[TokenCache] 序列化 token 失败", logger.ErrorField(err))
		return
	}
	if err := c.client.Set(ctx, c.key, raw, ttl).Err(); err != nil {
		logger.Warn("[TokenCache] 写入 Redis 失败", logger.ErrorField(err))
	}
}

func encodeToken(t catalog.Token) ([]byte, error) {
	return json.Marshal(storedToken{AccessToken: t.AccessToken, ExpiresAt: t.ExpiresAt})
}

func decodeToken(raw []byte) (catalog.Token, error) {
	var s storedToken
	if err := json.Unmarshal(raw, &s); err != nil {
		return catalog.Token{}, err
	}
	return catalog.Token{AccessToken: s.AccessToken, ExpiresAt: s.ExpiresAt}, nil
}
