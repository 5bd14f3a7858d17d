package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/coocood/freecache"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxErrorBodySize = 4 << 10

// Client calls the strict API over HTTP. Recommend adds the client-side
// graceful degradation: any failure is replaced by a fallback entry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logrus.FieldLogger

	cache    *freecache.Cache
	cacheTTL time.Duration
}

type ClientOption func(*Client)

// WithResponseCache caches matched records in memory for ttl, rounded up to whole seconds.
// A non-positive ttl disables the cache.
func WithResponseCache(sizeBytes int, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = freecache.NewCache(sizeBytes)
		c.cacheTTL = ttl
	}
}

// NewClient builds a client for the API at baseURL. A nil httpClient gets a traced default one.
func NewClient(baseURL string, httpClient *http.Client, logger logrus.FieldLogger, opts ...ClientOption) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		}
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Match posts the raw profile to the strict API. A 404 is returned as ErrNotFound.
func (c *Client) Match(ctx context.Context, raw RawProfile) (*Record, error) {
	cacheKey := c.cacheKey(raw)
	if record, ok := c.fromCache(cacheKey); ok {
		return record, nil
	}

	body, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+MatchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post profile: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		var errResp struct {
			Error string `json:"error"`
		}
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var record Record
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode protocol record: %w", err)
	}

	c.toCache(cacheKey, &record)
	return &record, nil
}

// Recommend never fails: on 404, non-2xx, transport or decoding errors it
// returns the fallback entry for the normalized profile's target.
func (c *Client) Recommend(ctx context.Context, raw RawProfile) *Recommendation {
	record, err := c.Match(ctx, raw)
	if err == nil {
		return protocolRecommendation(record)
	}

	profile := Normalize(raw)
	logger := c.logger.WithFields(logrus.Fields{
		"state":  StateFallback,
		"target": profile.Target,
	}).WithError(err)
	if errors.Is(err, ErrNotFound) {
		logger.Info("no protocol matched, serving fallback")
	} else {
		logger.Warn("protocol api call failed, serving fallback")
	}

	return fallbackRecommendation(profile)
}

func (c *Client) cacheKey(raw RawProfile) []byte {
	if c.cache == nil {
		return nil
	}
	k := Normalize(raw).Key()
	return []byte(strings.Join(k[:], "\x1f"))
}

func (c *Client) fromCache(key []byte) (*Record, bool) {
	if c.cache == nil {
		return nil, false
	}
	cached, err := c.cache.Get(key)
	if err != nil {
		return nil, false
	}
	var record Record
	if err := json.Unmarshal(cached, &record); err != nil {
		c.logger.WithError(err).Warn("drop undecodable cached protocol")
		c.cache.Del(key)
		return nil, false
	}
	return &record, true
}

func (c *Client) toCache(key []byte, record *Record) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	recordJson, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := c.cache.Set(key, recordJson, cacheExpireSeconds(c.cacheTTL)); err != nil {
		c.logger.WithError(err).Debug("protocol not cached")
	}
}

// cacheExpireSeconds rounds ttl up to whole seconds; freecache treats 0 as "never expires".
func cacheExpireSeconds(ttl time.Duration) int {
	return int(math.Ceil(ttl.Seconds()))
}
