package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"coin-design-enrich/config"
)

const (
	defaultHTTPTimeout    = 120 * time.Second
	defaultRetryAttempts  = 5
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 30 * time.Second
	maxErrorBody          = 512
)

// HTTPStatusError is a non-2xx answer from the model service.
type HTTPStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("llm request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Retryable reports whether the request may succeed when repeated.
func (e *HTTPStatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// OpenAIClient talks to the OpenAI files, batches and chat completions endpoints.
type OpenAIClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client

	retryAttempts  int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
	sleep          func(context.Context, time.Duration) error
}

type Option func(*OpenAIClient)

func WithHTTPClient(client *http.Client) Option {
	return func(c *OpenAIClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithBaseURL(u string) Option {
	return func(c *OpenAIClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithRetry overrides the attempt count and the exponential backoff bounds.
func WithRetry(attempts int, base, maxDelay time.Duration) Option {
	return func(c *OpenAIClient) {
		c.retryAttempts = attempts
		c.retryBaseDelay = base
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper replaces the backoff wait, mostly for tests.
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(c *OpenAIClient) {
		c.sleep = sleep
	}
}

func NewOpenAIClient(cfg *config.LLMConfig, opts ...Option) *OpenAIClient {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &OpenAIClient{
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:         strings.TrimSpace(cfg.APIKey),
		model:          cfg.Model,
		temperature:    cfg.Temperature,
		httpClient:     &http.Client{Timeout: timeout},
		retryAttempts:  defaultRetryAttempts,
		retryBaseDelay: defaultRetryBaseDelay,
		retryMaxDelay:  defaultRetryMaxDelay,
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.baseURL == "" {
		c.baseURL = "https://api.openai.com"
	}
	if c.retryAttempts < 1 {
		c.retryAttempts = 1
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// send issues the request and retries transport failures, 429 and 5xx
// answers. The caller owns the returned body.
func (c *OpenAIClient) send(ctx context.Context, method, path, contentType string, payload []byte) (*http.Response, error) {
	if c.apiKey == "" {
		return nil, errors.New("llm request: api key required")
	}
	url := c.baseURL + path
	var lastErr error
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
		if err != nil {
			return nil, errors.Wrap(err, "llm request: new request")
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = errors.Wrapf(err, "llm request %s %s", method, path)
		} else if resp.StatusCode < http.StatusMultipleChoices {
			return resp, nil
		} else {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			_ = resp.Body.Close()
			statusErr := &HTTPStatusError{
				StatusCode: resp.StatusCode,
				Body:       string(body),
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			}
			if !statusErr.Retryable() {
				return nil, statusErr
			}
			lastErr = statusErr
		}

		if attempt == c.retryAttempts {
			break
		}
		delay := c.backoff(attempt, lastErr)
		zap.S().Warnf("llm: retrying %s %s in %s (attempt %d/%d): %v", method, path, delay, attempt, c.retryAttempts, lastErr)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, errors.Wrapf(lastErr, "llm request: failed after %d attempts", c.retryAttempts)
}

func (c *OpenAIClient) backoff(attempt int, err error) time.Duration {
	delay := c.retryBaseDelay * time.Duration(1<<(attempt-1))
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.RetryAfter > delay {
		delay = statusErr.RetryAfter
	}
	if c.retryMaxDelay > 0 && delay > c.retryMaxDelay {
		delay = c.retryMaxDelay
	}
	return delay
}

func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func (c *OpenAIClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "llm request: encode body")
		}
		payload = b
		contentType = "application/json"
	}
	resp, err := c.send(ctx, method, path, contentType, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	if err := decodeBody(resp.Body, out); err != nil {
		return errors.Wrapf(err, "llm response %s %s", method, path)
	}
	return nil
}

func decodeBody(r io.Reader, out any) error {
	return json.NewDecoder(r).Decode(out)
}
