package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"Tunelist/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// DefaultPageSize 分类接口单页上限
	DefaultPageSize = 50

	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	DefaultAPIURL   = "https://api.spotify.com/v1"
)

// Client 目录服务 API 客户端，只负责网络请求，不保存 token
type Client struct {
	tokenURL   string
	apiURL     string
	pageSize   int
	httpClient *http.Client
}

// NewClient 创建新的API客户端
func NewClient(tokenURL, apiURL string, pageSize int, timeout time.Duration) *Client {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}
	return &Client{
		tokenURL: tokenURL,
		apiURL:   strings.TrimRight(apiURL, "/"),
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetHTTPClient replaces the transport, mainly for tests.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// AcquireToken performs a client-credentials exchange and returns the bearer
// token with its lifetime in seconds.
func (c *Client) AcquireToken(ctx context.Context, clientID, clientSecret string) (string, int64, error) {
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     c.tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := conf.Token(ctx)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			status := 0
			if rErr.Response != nil {
				status = rErr.Response.StatusCode
			}
			return "", 0, fmt.Errorf("%w: token endpoint returned %d %s", ErrProviderRejected, status, rErr.ErrorCode)
		}
		return "", 0, fmt.Errorf("%w: token request failed: %v", ErrProviderUnavailable, err)
	}

	ttl := tokenTTL(tok)
	logger.Debug("[Catalog] 获取 token 成功", logger.Int64("ttlSeconds", ttl))
	return tok.AccessToken, ttl, nil
}

// tokenTTL prefers the raw expires_in field and falls back to the computed expiry.
func tokenTTL(tok *oauth2.Token) int64 {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	if tok.Expiry.IsZero() {
		return 0
	}
	ttl := int64(time.Until(tok.Expiry).Round(time.Second) / time.Second)
	if ttl < 0 {
		return 0
	}
	return ttl
}

type categoriesResponse struct {
	Categories struct {
		Items []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"items"`
		Total int `json:"total"`
	} `json:"categories"`
}

// ListGenres 获取第一页分类名称（小写），作为合法流派词表
func (c *Client) ListGenres(ctx context.Context, token string) ([]string, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.pageSize))
	q.Set("offset", "0")
	endpoint := c.apiURL + "/browse/categories?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: 创建请求失败: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: 请求失败: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: categories returned %d", ErrProviderUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		// 丢弃响应体以便连接复用
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: categories returned %d", ErrProviderRejected, resp.StatusCode)
	}

	var result categoriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: 解析响应失败: %v", ErrProviderUnavailable, err)
	}

	genres := make([]string, 0, len(result.Categories.Items))
	for _, item := range result.Categories.Items {
		if item.Name == "" {
			continue
		}
		genres = append(genres, strings.ToLower(item.Name))
	}
	return genres, nil
}
