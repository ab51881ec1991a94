package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// =============================================================================
// Client PostgREST（Supabase REST）基础客户端
// 固定API Key鉴权，每次调用都是一次直连请求：不重试、不缓存
// =============================================================================

// Client PostgREST客户端
type Client struct {
	baseURL    string       // 形如 https://xxx.supabase.co
	apiKey     string       // anon / service key
	httpClient *http.Client // HTTP客户端
	logger     *zap.Logger
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换HTTP客户端（测试用）
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient 创建客户端实例
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request 单次请求描述
type request struct {
	method string
	table  string
	query  url.Values
	body   interface{}
	prefer string
}

// do 执行请求。非2xx返回 *RemoteError；result非nil时解析JSON响应
func (c *Client) do(ctx context.Context, r request, result interface{}) error {
	var bodyReader io.Reader
	if r.body != nil {
		bodyBytes, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	path := "/rest/v1/" + r.table
	target := c.baseURL + path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}

	c.logger.Debug("postgrest request",
		zap.String("method", r.method),
		zap.String("path", path),
		zap.String("query", req.URL.RawQuery),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", r.method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	c.logger.Debug("postgrest response",
		zap.String("method", r.method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respBody)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{
			Method: r.method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   string(respBody),
		}
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode %s %s response: %w", r.method, path, err)
		}
	}
	return nil
}
