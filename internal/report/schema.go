// Package report drives the tool-orchestrated generation of the lodging
// industry outlook: an explicit state machine around a model session, local
// tool dispatch, and schema validation of the final answer.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	schemaOnce     sync.Once
	schemaJSON     string
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// SchemaJSON returns the report JSON schema as a document, for embedding in
// the generation prompt.
func SchemaJSON() string {
	ensureSchema()
	return schemaJSON
}

func ensureSchema() {
	schemaOnce.Do(func() {
		narrative := map[string]any{"type": []string{"string", "null"}}
		sourceList := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}

		doc := map[string]any{
			"type": "object",
			"required": []string{
				"summary", "demand_trends", "economic_and_industry_metrics",
				"sentiment_analysis", "regional_segmentation", "emerging_trends",
				"historical_comparison", "conclusions",
			},
			"additionalProperties": false,
			"properties": map[string]any{
				"summary": map[string]any{"type": "string"},
				"demand_trends": map[string]any{
					"type":     "object",
					"required": []string{"leisure", "group", "business", "convention", "by_price_scale"},
					"properties": map[string]any{
						"leisure":    narrative,
						"group":      narrative,
						"business":   narrative,
						"convention": narrative,
						"by_price_scale": map[string]any{
							"type":     "object",
							"required": []string{"luxury", "premium", "economy"},
							"properties": map[string]any{
								"luxury":  narrative,
								"premium": narrative,
								"economy": narrative,
							},
						},
					},
				},
				"economic_and_industry_metrics": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []string{"metric"},
						"properties": map[string]any{
							"metric":         map[string]any{"type": "string"},
							"value":          map[string]any{"type": []string{"number", "string", "null"}},
							"trend_vs_prior": narrative,
							"source":         narrative,
							"notes":          narrative,
						},
					},
				},
				"sentiment_analysis": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []string{"quote_or_paraphrase"},
						"properties": map[string]any{
							"quote_or_paraphrase": map[string]any{"type": "string"},
							"attribution": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"speaker": narrative,
									"source":  narrative,
								},
							},
						},
					},
				},
				"regional_segmentation": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []string{"region"},
						"properties": map[string]any{
							"region":  map[string]any{"type": "string"},
							"trend":   narrative,
							"sources": sourceList,
						},
					},
				},
				"emerging_trends": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"historical_comparison": map[string]any{
					"type":     "object",
					"required": []string{"period_compared", "key_differences"},
					"properties": map[string]any{
						"period_compared": narrative,
						"key_differences": sourceList,
					},
				},
				"conclusions": narrative,
			},
		}
		raw, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			schemaErr = err
			return
		}
		schemaJSON = string(raw)
		compiledSchema, schemaErr = jsonschema.CompileString("report.json", schemaJSON)
	})
}

// ValidateReport checks a raw JSON report against the schema.
func ValidateReport(raw []byte) error {
	ensureSchema()
	if schemaErr != nil {
		return fmt.Errorf("compile report schema: %w", schemaErr)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode report: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return fmt.Errorf("report schema validation: %w", err)
	}
	return nil
}

// ExtractJSON pulls the JSON object out of a model answer that may wrap it in
// a markdown fence or surrounding prose. Returns an error when no object is
// found.
func ExtractJSON(text string) ([]byte, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model answer")
	}
	return []byte(s[start : end+1]), nil
}
