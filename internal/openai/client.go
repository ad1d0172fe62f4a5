// Package openai binds the pipeline's remote boundaries (file upload, vector
// store sync, attribute extraction, report generation, semantic search) to
// the provider's HTTP API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 90 * time.Second
)

// Config carries the provider settings the client needs.
type Config struct {
	APIKey       string
	BaseURL      string
	ExtractModel string
	ReportModel  string
	Timeout      time.Duration
}

// Client is a thin JSON client over the provider API. Every call gets a
// per-request timeout and one retry for transient failures.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.SugaredLogger
}

func NewClient(cfg Config, log *zap.SugaredLogger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{},
		log:  log,
	}
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

// doJSON performs one JSON API call with a single retry for retryable
// provider errors.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		err := c.doJSONOnce(ctx, method, path, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !model.IsRetryable(err) || ctx.Err() != nil {
			return err
		}
		c.log.Warnw("api.retry", "method", method, "path", path, "attempt", attempt+1, "error", err)
	}
	return lastErr
}

func (c *Client) doJSONOnce(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reqID := uuid.NewString()
	start := time.Now()

	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(bs)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debugw("api.request", "req_id", reqID, "method", method, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warnw("api.transport_error", "req_id", reqID, "path", path, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return &model.ProviderError{Code: "transport", Message: err.Error(), Retryable: true, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(resp.Body)
	c.log.Debugw("api.response", "req_id", reqID, "path", path, "status", resp.StatusCode,
		"bytes", len(raw), "elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode/100 != 2 {
		return providerError(resp.StatusCode, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}

func providerError(status int, raw []byte) *model.ProviderError {
	pe := &model.ProviderError{
		Code:       fmt.Sprintf("http_%d", status),
		Message:    strings.TrimSpace(string(raw)),
		StatusCode: status,
		Retryable:  status == http.StatusTooManyRequests || status >= 500,
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		pe.Message = body.Error.Message
		if body.Error.Code != "" {
			pe.Code = body.Error.Code
		}
	}
	return pe
}
