package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

const (
	indexName    = "Hospitality Vector Store"
	pollInterval = 2 * time.Second
	pollDeadline = 5 * time.Minute
)

// EnsureIndex returns a usable vector store id. A non-empty existing id is
// verified and returned unchanged; a missing or deleted store is replaced.
func (c *Client) EnsureIndex(ctx context.Context, existingID string) (string, error) {
	if existingID != "" {
		err := c.doJSON(ctx, http.MethodGet, "/vector_stores/"+existingID, nil, nil)
		if err == nil {
			return existingID, nil
		}
		var pe *model.ProviderError
		if !errors.As(err, &pe) || pe.StatusCode != http.StatusNotFound {
			return "", err
		}
		c.log.Warnw("vector store missing, creating a new one", "vector_store_id", existingID)
	}

	var out struct {
		ID string `json:"id"`
	}
	body := map[string]any{"name": indexName}
	if err := c.doJSON(ctx, http.MethodPost, "/vector_stores", body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("vector store response missing id")
	}
	c.log.Infow("vector store created", "vector_store_id", out.ID)
	return out.ID, nil
}

// Attach adds a file to the vector store and polls until ingestion settles.
func (c *Client) Attach(ctx context.Context, remoteFileID, indexID string) error {
	body := map[string]any{"file_id": remoteFileID}
	if err := c.doJSON(ctx, http.MethodPost, "/vector_stores/"+indexID+"/files", body, nil); err != nil {
		return &model.IndexSyncError{Op: "attach", RemoteFileID: remoteFileID, Cause: err}
	}

	deadline := time.Now().Add(pollDeadline)
	for {
		var out struct {
			Status    string `json:"status"`
			LastError *struct {
				Message string `json:"message"`
			} `json:"last_error"`
		}
		path := "/vector_stores/" + indexID + "/files/" + remoteFileID
		if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
			return &model.IndexSyncError{Op: "attach", RemoteFileID: remoteFileID, Cause: err}
		}
		switch out.Status {
		case "completed":
			return nil
		case "failed", "cancelled":
			msg := out.Status
			if out.LastError != nil && out.LastError.Message != "" {
				msg = out.LastError.Message
			}
			return &model.IndexSyncError{Op: "attach", RemoteFileID: remoteFileID,
				Cause: fmt.Errorf("ingestion %s", msg)}
		}
		if time.Now().After(deadline) {
			return &model.IndexSyncError{Op: "attach", RemoteFileID: remoteFileID,
				Cause: fmt.Errorf("ingestion still %q after %s", out.Status, pollDeadline)}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Detach removes a file from the vector store. Detaching a file the store no
// longer has is not an error.
func (c *Client) Detach(ctx context.Context, remoteFileID, indexID string) error {
	err := c.doJSON(ctx, http.MethodDelete, "/vector_stores/"+indexID+"/files/"+remoteFileID, nil, nil)
	if err == nil {
		return nil
	}
	var pe *model.ProviderError
	if errors.As(err, &pe) && pe.StatusCode == http.StatusNotFound {
		return nil
	}
	return &model.IndexSyncError{Op: "detach", RemoteFileID: remoteFileID, Cause: err}
}

// Search runs a semantic query against the vector store.
func (c *Client) Search(ctx context.Context, indexID, query string, maxResults int) ([]model.SearchHit, error) {
	if maxResults <= 0 {
		maxResults = 8
	}
	body := map[string]any{"query": query, "max_num_results": maxResults}
	var out struct {
		Data []struct {
			FileID   string  `json:"file_id"`
			Filename string  `json:"filename"`
			Score    float64 `json:"score"`
			Content  []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/vector_stores/"+indexID+"/search", body, &out); err != nil {
		return nil, err
	}

	hits := make([]model.SearchHit, 0, len(out.Data))
	for _, d := range out.Data {
		hit := model.SearchHit{RemoteFileID: d.FileID, Filename: d.Filename, Score: d.Score}
		for _, chunk := range d.Content {
			if chunk.Type == "text" && chunk.Text != "" {
				hit.Snippet = chunk.Text
				break
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
