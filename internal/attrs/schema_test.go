package attrs

import (
	"testing"

	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

func TestValidateAcceptsTypicalExtraction(t *testing.T) {
	set := model.AttributeSet{
		"title":             "Marriott International Q2 2025 Earnings Call",
		"brand":             "Marriott",
		"doc_type":          "earnings_transcript",
		"industry":          "hotel_brand",
		"fiscal_quarter":    "Q2",
		"fiscal_year":       "2025",
		"period_label":      "Q2 2025",
		"region":            "North America",
		"chain_scale":       []string{"luxury", "upper_upscale"},
		"customer_segment":  []string{"leisure", "group"},
		"metrics_mentioned": []string{"RevPAR", "ADR", "OCC"},
	}
	if err := Validate(set); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestValidateAcceptsNumbersAndBlanks(t *testing.T) {
	raw := []byte(`{"title":"Delta Q1","fiscal_year":2025,"doc_type":"","industry":"airline"}`)
	if err := ValidateJSON(raw); err != nil {
		t.Fatalf("ValidateJSON failed: %v", err)
	}
}

func TestValidateRejectsUnknownField(t *testing.T) {
	raw := []byte(`{"title":"x","surprise":"y"}`)
	if err := ValidateJSON(raw); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestValidateRejectsBadEnum(t *testing.T) {
	raw := []byte(`{"fiscal_quarter":"Q7"}`)
	if err := ValidateJSON(raw); err == nil {
		t.Fatal("expected enum violation to be rejected")
	}
}

func TestValidateRejectsNonJSON(t *testing.T) {
	if err := ValidateJSON([]byte("not json")); err == nil {
		t.Fatal("expected parse failure")
	}
}

func TestNormalizeFillsAndCoerces(t *testing.T) {
	in := model.AttributeSet{
		"title":             nil,
		"fiscal_year":       2025,
		"metrics_mentioned": []any{"RevPAR", "ADR"},
	}
	out := Normalize(in, "MAR_Q2_2025_transcript.pdf")

	if got := out["title"]; got != "MAR Q2 2025 transcript" {
		t.Errorf("title backfill = %v", got)
	}
	if got := out["fiscal_year"]; got != "2025" {
		t.Errorf("fiscal_year = %v (%T)", got, got)
	}
	metrics, ok := out["metrics_mentioned"].([]string)
	if !ok || len(metrics) != 2 || metrics[0] != "RevPAR" {
		t.Errorf("metrics_mentioned = %v", out["metrics_mentioned"])
	}
	for _, name := range Names() {
		if _, present := out[name]; !present {
			t.Errorf("missing normalized field %q", name)
		}
	}
}

func TestNormalizedOutputValidates(t *testing.T) {
	out := Normalize(model.AttributeSet{"fiscal_year": 2025}, "delta_q1.pdf")
	if err := Validate(out); err != nil {
		t.Fatalf("normalized set should validate: %v", err)
	}
}
