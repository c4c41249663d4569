package catalog

import (
	"context"
	"sync"
	"time"
)

// Token is a bearer credential for the catalog provider.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ValidAt reports whether the token may be used at now.
func (t Token) ValidAt(now time.Time) bool {
	return t.AccessToken != "" && now.Before(t.ExpiresAt)
}

// TokenCache holds at most one catalog token. Get only returns a token that
// is still valid; Set replaces the slot wholesale.
type TokenCache interface {
	Get(ctx context.Context) (Token, bool)
	Set(ctx context.Context, token Token)
}

// MemoryTokenCache 进程内单槽 token 缓存
type MemoryTokenCache struct {
	mu    sync.RWMutex
	token Token
	now   func() time.Time
}

// NewMemoryTokenCache 创建空缓存
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{now: time.Now}
}

// WithClock overrides the clock used for expiry checks.
func (c *MemoryTokenCache) WithClock(now func() time.Time) *MemoryTokenCache {
	c.now = now
	return c
}

// Get 返回未过期的 token
func (c *MemoryTokenCache) Get(_ context.Context) (Token, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.token.ValidAt(c.now()) {
		return Token{}, false
	}
	return c.token, true
}

// Set 整体替换缓存的 token
func (c *MemoryTokenCache) Set(_ context.Context, token Token) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}
