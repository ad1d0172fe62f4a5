package cli

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	raw := `{
	  "summary": "Moderate growth ahead.",
	  "demand_trends": {
	    "leisure": "Normalizing.",
	    "group": "Strong pace.",
	    "business": null,
	    "convention": null,
	    "by_price_scale": {"luxury": "Resilient.", "premium": null, "economy": "Soft."}
	  },
	  "economic_and_industry_metrics": [
	    {"metric": "RevPAR", "value": 2.1, "trend_vs_prior": "up", "source": "MAR Q2 2025", "notes": null}
	  ],
	  "sentiment_analysis": [
	    {"quote_or_paraphrase": "Booking windows lengthening.", "attribution": {"speaker": null, "source": "HLT Q2 2025"}}
	  ],
	  "regional_segmentation": [
	    {"region": "Northeast", "trend": "Urban outperforming.", "sources": ["MAR Q2 2025"]}
	  ],
	  "emerging_trends": ["Extended-stay supply growth"],
	  "historical_comparison": {"period_compared": "Q2 2024 vs Q2 2025", "key_differences": ["ADR decelerated"]},
	  "conclusions": "Luxury stays resilient."
	}`
	var rep map[string]any
	if err := json.Unmarshal([]byte(raw), &rep); err != nil {
		t.Fatal(err)
	}

	md := RenderMarkdown(rep, "Q2 2025")

	for _, want := range []string{
		"# U.S. Lodging Industry Outlook — Q2 2025",
		"## Summary",
		"Moderate growth ahead.",
		"- **Leisure:** Normalizing.",
		"- **Business:** _No data_",
		"- Luxury: Resilient.",
		"| RevPAR | 2.1 | up | MAR Q2 2025 |",
		"Booking windows lengthening.",
		"Unknown, *HLT Q2 2025*",
		"- **Northeast** — Urban outperforming. (Sources: MAR Q2 2025)",
		"- Extended-stay supply growth",
		"- **Period Compared:** Q2 2024 vs Q2 2025",
		"- ADR decelerated",
		"## Conclusions",
		"Luxury stays resilient.",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestRenderMarkdownEmptyReport(t *testing.T) {
	md := RenderMarkdown(map[string]any{}, "2025-07")
	for _, want := range []string{"_No data_", "_No metrics_", "_No sentiment items_", "_No regional items_", "_No emerging trends_"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}
