package server

import (
	"Tunelist/cache"
	"Tunelist/config"
	"Tunelist/core/catalog"
	"Tunelist/core/library"
	"Tunelist/logger"
)

// NewGenreValidator picks the validator variant from configuration. The
// returned func releases any backend the token cache holds.
func NewGenreValidator(cfg *config.Config) (library.GenreValidator, func(), error) {
	if !cfg.CatalogEnabled() {
		logger.Warn("[Catalog] 流派校验已关闭，所有流派均被接受")
		return catalog.Disabled{}, func() {}, nil
	}
	return NewCatalogValidator(cfg)
}

// NewCatalogValidator builds the provider-backed validator regardless of the
// CATALOG_VALIDATION switch.
func NewCatalogValidator(cfg *config.Config) (*catalog.Validator, func(), error) {
	client := catalog.NewClient(cfg.CatalogTokenURL, cfg.CatalogAPIURL, cfg.CatalogPageSize, cfg.CatalogTimeout)
	creds := catalog.Credentials{ClientID: cfg.CatalogClientID, ClientSecret: cfg.CatalogClientSecret}

	if cfg.TokenCache != "redis" {
		return catalog.NewValidator(client, catalog.NewMemoryTokenCache(), creds, cfg.CatalogTimeout), func() {}, nil
	}

	rdb, err := cache.ConnectRedis(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("[Catalog] token 缓存使用 Redis", logger.String("host", cfg.RedisHost), logger.Int("db", cfg.RedisDB))

	tokens := cache.NewRedisTokenCache(rdb, cache.DefaultTokenKey)
	closeFn := func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("[Catalog] 关闭 Redis 连接失败", logger.ErrorField(err))
		}
	}
	return catalog.NewValidator(client, tokens, creds, cfg.CatalogTimeout), closeFn, nil
}
