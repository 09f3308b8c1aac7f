package util

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
)

// Client wraps http.Client with per-host rate limiting and bounded retry
// with exponential backoff on 429/5xx and network errors. Retry-After is
// honored when the vendor sends it. On attempt exhaustion the call fails;
// callers keep whatever pages they already gathered.
type Client struct {
	hc         *http.Client
	limiter    *HostLimiter
	maxRetries int
	sleep      func(time.Duration)
}

func NewClient(limiter *HostLimiter) *Client {
	return &Client{
		hc:         &http.Client{Timeout: 30 * time.Second},
		limiter:    limiter,
		maxRetries: 3,
		sleep:      time.Sleep,
	}
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// JSON issues a request (re-built per attempt so bodies can be resent),
// expecting a JSON response decoded into out.
func (c *Client) JSON(ctx context.Context, method, url string, headers map[string]string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	resp, err := c.do(ctx, func() (*http.Request, error) {
		var rd io.Reader
		if payload != nil {
			rd = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, rd)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}

// Get fetches a page (HTML or otherwise) with the same retry behavior. The
// caller owns the response body.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	resp, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "jobcorpus-engine/1.0 (+local)")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	backoff := time.Second

	for attempt := 0; ; attempt++ {
		req, err := build()
		if err != nil {
			return nil, err
		}
		if c.limiter != nil {
			if err := c.limiter.WaitURL(ctx, req.URL.String()); err != nil {
				return nil, err
			}
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			if attempt >= c.maxRetries {
				return nil, fmt.Errorf("network error after %d attempts: %w", attempt+1, err)
			}
			c.sleep(backoff)
			backoff = min(backoff*2, 8*time.Second)
			continue
		}

		if retryableStatus(resp.StatusCode) && attempt < c.maxRetries {
			wait := backoff
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, perr := strconv.ParseFloat(ra, 64); perr == nil {
					wait = time.Duration(secs * float64(time.Second))
				}
			}
			resp.Body.Close()
			log.Printf("[http] %s %s: HTTP %d, retrying in %s", req.Method, req.URL.Host, resp.StatusCode, wait)
			c.sleep(wait)
			backoff = min(backoff*2, 16*time.Second)
			continue
		}

		return resp, nil
	}
}
