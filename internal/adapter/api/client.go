package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/LeomarSanguenza/pos-core/internal/port"
	"github.com/LeomarSanguenza/pos-core/internal/session"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultBatchWindow = 50 * time.Millisecond
)

type Config struct {
	BaseURL string

	// Timeout bounds one request attempt; default 30s.
	Timeout time.Duration

	// Retry applies to every plain Get/Post/Put/Patch/Delete call.
	Retry RetryPolicy

	// BatchWindow is the batcher's coalescing window; default 50ms.
	BatchWindow time.Duration
}

// Client is the single channel requests leave the process through. It
// decorates every request with the session's bearer credential, tears the
// session down on a 401, and retries transient failures.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store
	cache   port.Cache
	retry   RetryPolicy
	log     *logrus.Logger
}

// NewClient builds a client backed by sess for credentials and cache for
// the cached-read path. cache may be nil, caching is then disabled.
func NewClient(cfg Config, sess *session.Store, cache port.Cache, log *logrus.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retry == (RetryPolicy{}) {
		cfg.Retry = DefaultRetryPolicy()
	}
	if log == nil {
		log = logrus.New()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		session: sess,
		cache:   cache,
		retry:   cfg.Retry,
		log:     log,
	}
}

// Get issues a retried GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	payload, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	return decode(payload, out)
}

// GetCached serves the request from the cache when a fresh entry exists,
// otherwise fetches with retry and stores the payload under the
// canonical key for ttl. Cache failures degrade to a plain fetch.
func (c *Client) GetCached(ctx context.Context, path string, ttl time.Duration, out any) error {
	if c.cache == nil {
		return c.Get(ctx, path, out)
	}

	key := CacheKey(path)
	payload, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache read failed")
	}
	if ok {
		return decode(payload, out)
	}

	payload, err = c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	if err := c.cache.Set(ctx, key, payload, ttl); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return decode(payload, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	payload, err := c.do(ctx, http.MethodPost, path, in, nil)
	if err != nil {
		return err
	}
	return decode(payload, out)
}

// PostIdempotent is Post with a client-generated idempotency key, so the
// server can collapse a retried write whose first effect already landed.
func (c *Client) PostIdempotent(ctx context.Context, path, idempotencyKey string, in, out any) error {
	header := http.Header{}
	header.Set("Idempotency-Key", idempotencyKey)
	payload, err := c.do(ctx, http.MethodPost, path, in, header)
	if err != nil {
		return err
	}
	return decode(payload, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	payload, err := c.do(ctx, http.MethodPut, path, in, nil)
	if err != nil {
		return err
	}
	return decode(payload, out)
}

func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	payload, err := c.do(ctx, http.MethodPatch, path, in, nil)
	if err != nil {
		return err
	}
	return decode(payload, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// do wraps send in the retry policy.
func (c *Client) do(ctx context.Context, method, path string, body any, header http.Header) ([]byte, error) {
	var payload []byte
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		var sendErr error
		payload, sendErr = c.send(ctx, method, path, body, header)
		return sendErr
	})
	return payload, err
}

// send performs exactly one attempt.
func (c *Client) send(ctx context.Context, method, path string, body any, header http.Header) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Set(k, v)
		}
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and transport failures never produced a status code;
		// they classify as retryable.
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.WithField("path", path).Warn("unauthorized response, tearing down session")
		c.session.Invalidate()
	}
	if resp.StatusCode >= 400 {
		return nil, &Error{StatusCode: resp.StatusCode, Message: errorMessage(payload)}
	}
	return payload, nil
}

func errorMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Message
}

func decode(payload []byte, out any) error {
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
