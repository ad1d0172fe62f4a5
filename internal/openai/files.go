package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

// Upload pushes a local file to the files API with purpose "assistants" and
// returns the remote file id. The form is buffered up front so a transient
// failure gets the same single retry as the JSON calls.
func (c *Client) Upload(ctx context.Context, absPath string) (string, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", absPath, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("purpose", "assistants"); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	part, err := mw.CreateFormFile("file", filepath.Base(absPath))
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read %s: %w", absPath, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		id, err := c.uploadOnce(ctx, absPath, buf.Bytes(), mw.FormDataContentType())
		if err == nil {
			return id, nil
		}
		lastErr = err
		if !model.IsRetryable(err) || ctx.Err() != nil {
			return "", err
		}
		c.log.Warnw("api.retry", "method", http.MethodPost, "path", "/files", "attempt", attempt+1, "error", err)
	}
	return "", lastErr
}

func (c *Client) uploadOnce(ctx context.Context, absPath string, form []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/files"), bytes.NewReader(form))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", &model.ProviderError{Code: "transport", Message: err.Error(), Retryable: true, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(resp.Body)
	c.log.Debugw("api.upload", "file", filepath.Base(absPath), "status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds())
	if resp.StatusCode/100 != 2 {
		return "", providerError(resp.StatusCode, raw)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("upload response missing file id")
	}
	return out.ID, nil
}
