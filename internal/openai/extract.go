package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jamesaloy3/hospitality-outlook/internal/attrs"
	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

const extractSystemPrompt = `You are extracting structured attributes from the attached document.
Output ONLY a JSON object that exactly matches the provided JSON schema.
Each field may be a string, a number, or an array of strings.
If a value is unknown, output an empty string "" (or an empty array [] where appropriate).
Do not include any keys that are not in the schema. Do not include explanations.`

// Extract asks the model for the fixed attribute set of an uploaded document.
// The raw model JSON is schema-validated here; the reconciler normalizes and
// re-validates before accepting it into a record.
func (c *Client) Extract(ctx context.Context, remoteFileID, filenameHint string) (model.AttributeSet, error) {
	var schema json.RawMessage = []byte(attrs.SchemaJSON())

	var guidance strings.Builder
	guidance.WriteString("Extract the document attributes.")
	if filenameHint != "" {
		fmt.Fprintf(&guidance, " Filename hint: %s.", filenameHint)
	}
	guidance.WriteString("\nEnum hints (use only if supported by the document):\n")
	for name, allowed := range attrs.Enums() {
		fmt.Fprintf(&guidance, "  %s: %s\n", name, strings.Join(allowed, ", "))
	}

	body := map[string]any{
		"model": c.cfg.ExtractModel,
		"input": []any{
			map[string]any{"role": "system", "content": extractSystemPrompt},
			map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "input_file", "file_id": remoteFileID},
					map[string]any{"type": "input_text", "text": guidance.String()},
				},
			},
		},
		"text": map[string]any{
			"format": map[string]any{
				"type":   "json_schema",
				"name":   "DocAttributes",
				"schema": schema,
				"strict": false,
			},
		},
	}

	var resp responsesResponse
	if err := c.doJSON(ctx, http.MethodPost, "/responses", body, &resp); err != nil {
		return nil, err
	}
	text := resp.outputText()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty extraction response for %s", remoteFileID)
	}

	if err := attrs.ValidateJSON([]byte(text)); err != nil {
		return nil, err
	}
	var set model.AttributeSet
	if err := json.Unmarshal([]byte(text), &set); err != nil {
		return nil, fmt.Errorf("decode attributes: %w", err)
	}
	return set, nil
}
