package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"Tunelist/logger"
)

// Provider is the network surface the validator needs; *Client implements it.
type Provider interface {
	AcquireToken(ctx context.Context, clientID, clientSecret string) (string, int64, error)
	ListGenres(ctx context.Context, token string) ([]string, error)
}

// Credentials 客户端凭据
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Validator answers whether a genre is part of the provider's vocabulary.
//
// The cached token is trusted while its recorded expiry is in the future. If
// the provider still rejects it, the validator refreshes once and retries
// once; a second failure is terminal for that call.
type Validator struct {
	provider Provider
	cache    TokenCache
	creds    Credentials
	timeout  time.Duration
	now      func() time.Time

	// guards the read-then-maybe-refresh sequence on the cache
	mu sync.Mutex
}

// NewValidator 创建流派校验器
func NewValidator(provider Provider, cache TokenCache, creds Credentials, timeout time.Duration) *Validator {
	return &Validator{
		provider: provider,
		cache:    cache,
		creds:    creds,
		timeout:  timeout,
		now:      time.Now,
	}
}

// WithClock overrides the clock used to stamp token expiry.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// IsValidGenre reports case-insensitive membership of genre in the provider's
// vocabulary. Errors wrap ErrValidationUnavailable.
func (v *Validator) IsValidGenre(ctx context.Context, genre string) (bool, error) {
	genres, err := v.Genres(ctx)
	if err != nil {
		return false, err
	}

	genre = strings.TrimSpace(genre)
	for _, g := range genres {
		if strings.EqualFold(g, genre) {
			return true, nil
		}
	}
	return false, nil
}

// Genres returns the current genre vocabulary.
func (v *Validator) Genres(ctx context.Context) ([]string, error) {
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	token, err := v.token(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationUnavailable, err)
	}

	genres, err := v.provider.ListGenres(ctx, token)
	if errors.Is(err, ErrProviderRejected) {
		logger.Warn("[Catalog] token 被拒绝，强制刷新后重试一次", logger.ErrorField(err))

		token, err = v.token(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidationUnavailable, err)
		}
		genres, err = v.provider.ListGenres(ctx, token)
	}
	if err != nil {
		logger.Error("[Catalog] 获取流派列表失败", logger.ErrorField(err))
		return nil, fmt.Errorf("%w: %w", ErrValidationUnavailable, err)
	}
	return genres, nil
}

// token returns a usable bearer token. A non-empty stale token means the
// provider rejected it: the cache may only satisfy the call with a different
// token, otherwise a new one is acquired.
func (v *Validator) token(ctx context.Context, stale string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if cached, ok := v.cache.Get(ctx); ok && cached.AccessToken != stale {
		return cached.AccessToken, nil
	}

	accessToken, ttl, err := v.provider.AcquireToken(ctx, v.creds.ClientID, v.creds.ClientSecret)
	if err != nil {
		return "", err
	}

	v.cache.Set(ctx, Token{
		AccessToken: accessToken,
		ExpiresAt:   v.now().Add(time.Duration(ttl) * time.Second),
	})
	logger.Info("[Catalog] token 已刷新", logger.Int64("ttlSeconds", ttl), logger.Bool("forced", stale != ""))
	return accessToken, nil
}

// Disabled accepts every genre. It is injected when catalog validation is
// switched off by configuration.
type Disabled struct{}

// IsValidGenre always returns true.
func (Disabled) IsValidGenre(context.Context, string) (bool, error) {
	return true, nil
}
