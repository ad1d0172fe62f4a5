// Package attrs defines the fixed document-attribute schema and validates
// extraction output against it before the reconciler accepts it.
package attrs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

// attributeNames is the fixed extraction field set, spanning hospitality and
// airline earnings material. Every field is optional; unknown values are
// reported as an empty string.
var attributeNames = []string{
	"title",
	"brand",
	"doc_type",
	"industry",
	"fiscal_quarter",
	"fiscal_year",
	"period_label",
	"region",
	"chain_scale",
	"customer_segment",
	"metrics_mentioned",
}

// enums constrains the fields with a closed vocabulary. An empty string is
// always accepted for unknown.
var enums = map[string][]string{
	"doc_type": {
		"earnings_transcript", "earnings_release", "investor_presentation",
		"industry_report", "guidance_update", "other",
	},
	"industry": {
		"hotel_brand", "hotel_reit", "airline", "ota", "industry_research",
	},
	"fiscal_quarter": {"Q1", "Q2", "Q3", "Q4"},
	"chain_scale": {
		"luxury", "upper_upscale", "upscale", "upper_midscale",
		"midscale", "economy",
	},
	"customer_segment": {"leisure", "business", "group", "convention"},
}

// Names returns the attribute field names in schema order.
func Names() []string {
	out := make([]string, len(attributeNames))
	copy(out, attributeNames)
	return out
}

// Enums returns the closed vocabularies for enum-constrained fields.
func Enums() map[string][]string {
	out := make(map[string][]string, len(enums))
	for k, v := range enums {
		out[k] = append([]string(nil), v...)
	}
	return out
}

var (
	schemaOnce     sync.Once
	schemaJSON     string
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// SchemaJSON returns the attribute JSON schema as a document. Each plain
// property accepts a string, a number, or an array of strings; enum
// properties accept one allowed value (or "") or an array of allowed values.
// Unknown properties are rejected.
func SchemaJSON() string {
	ensureSchema()
	return schemaJSON
}

func ensureSchema() {
	schemaOnce.Do(func() {
		loose := map[string]any{
			"anyOf": []any{
				map[string]any{"type": "string"},
				map[string]any{"type": "number"},
				map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
		}
		props := map[string]any{}
		for _, name := range attributeNames {
			if allowed, ok := enums[name]; ok {
				withBlank := append(append([]string(nil), allowed...), "")
				props[name] = map[string]any{
					"anyOf": []any{
						map[string]any{"type": "string", "enum": withBlank},
						map[string]any{"type": "array", "items": map[string]any{"type": "string", "enum": allowed}},
					},
				}
				continue
			}
			props[name] = loose
		}
		doc := map[string]any{
			"type":                 "object",
			"properties":           props,
			"additionalProperties": false,
		}
		raw, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			schemaErr = err
			return
		}
		schemaJSON = string(raw)
		compiledSchema, schemaErr = jsonschema.CompileString("attributes.json", schemaJSON)
	})
}

// Validate checks one decoded attribute set against the schema.
func Validate(set model.AttributeSet) error {
	ensureSchema()
	if schemaErr != nil {
		return fmt.Errorf("compile attribute schema: %w", schemaErr)
	}
	// Round-trip so numbers and nested values carry the generic types the
	// validator expects regardless of how the set was produced.
	raw, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}
	return ValidateJSON(raw)
}

// ValidateJSON checks a raw JSON object against the attribute schema.
func ValidateJSON(raw []byte) error {
	ensureSchema()
	if schemaErr != nil {
		return fmt.Errorf("compile attribute schema: %w", schemaErr)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode attributes: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return fmt.Errorf("attribute schema validation: %w", err)
	}
	return nil
}

// Normalize fills missing fields with "", coerces numbers and list items to
// strings, and backfills a blank title from the filename stem.
func Normalize(set model.AttributeSet, filenameHint string) model.AttributeSet {
	out := make(model.AttributeSet, len(attributeNames))
	for _, name := range attributeNames {
		out[name] = normalizeValue(set[name])
	}
	if title, _ := out["title"].(string); strings.TrimSpace(title) == "" && filenameHint != "" {
		stem := strings.TrimSuffix(filepath.Base(filenameHint), filepath.Ext(filenameHint))
		out["title"] = strings.TrimSpace(strings.ReplaceAll(stem, "_", " "))
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := normalizeValue(item).(string); ok {
				items = append(items, s)
			}
		}
		return items
	case []string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
