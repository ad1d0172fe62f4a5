package cli

import (
	"fmt"
	"strings"
)

// RenderMarkdown turns a validated report object into the Markdown document
// written alongside the raw JSON.
func RenderMarkdown(rep map[string]any, periodLabel string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# U.S. Lodging Industry Outlook — %s\n\n", periodLabel)

	section(&b, "Summary", str(rep["summary"]))

	dt, _ := rep["demand_trends"].(map[string]any)
	b.WriteString("## Demand Trends\n\n")
	for _, seg := range []string{"leisure", "group", "business", "convention"} {
		fmt.Fprintf(&b, "- **%s:** %s\n", titleCase(seg), orNoData(str(dt[seg])))
	}
	b.WriteString("\n**By Price Scale**\n\n")
	bps, _ := dt["by_price_scale"].(map[string]any)
	for _, scale := range []string{"luxury", "premium", "economy"} {
		fmt.Fprintf(&b, "- %s: %s\n", titleCase(scale), orNoData(str(bps[scale])))
	}
	b.WriteString("\n")

	b.WriteString("## Economic & Industry Metrics\n\n")
	metrics, _ := rep["economic_and_industry_metrics"].([]any)
	if len(metrics) > 0 {
		b.WriteString("| Metric | Value | Trend vs Prior | Source | Notes |\n")
		b.WriteString("|---|---:|---|---|---|\n")
		for _, raw := range metrics {
			m, _ := raw.(map[string]any)
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				str(m["metric"]), str(m["value"]), str(m["trend_vs_prior"]),
				str(m["source"]), str(m["notes"]))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("_No metrics_\n\n")
	}

	b.WriteString("## Sentiment Analysis\n\n")
	senti, _ := rep["sentiment_analysis"].([]any)
	if len(senti) > 0 {
		for _, raw := range senti {
			s, _ := raw.(map[string]any)
			at, _ := s["attribution"].(map[string]any)
			speaker := str(at["speaker"])
			if speaker == "" {
				speaker = "Unknown"
			}
			fmt.Fprintf(&b, "- “%s” — %s, *%s*\n", str(s["quote_or_paraphrase"]), speaker, str(at["source"]))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("_No sentiment items_\n\n")
	}

	b.WriteString("## Regional Segmentation\n\n")
	regions, _ := rep["regional_segmentation"].([]any)
	if len(regions) > 0 {
		for _, raw := range regions {
			r, _ := raw.(map[string]any)
			fmt.Fprintf(&b, "- **%s** — %s (Sources: %s)\n",
				str(r["region"]), str(r["trend"]), strings.Join(strs(r["sources"]), ", "))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("_No regional items_\n\n")
	}

	b.WriteString("## Emerging Trends\n\n")
	trends := strs(rep["emerging_trends"])
	if len(trends) > 0 {
		for _, tr := range trends {
			fmt.Fprintf(&b, "- %s\n", tr)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("_No emerging trends_\n\n")
	}

	b.WriteString("## Historical Comparison\n\n")
	hc, _ := rep["historical_comparison"].(map[string]any)
	fmt.Fprintf(&b, "- **Period Compared:** %s\n", orNoData(str(hc["period_compared"])))
	for _, d := range strs(hc["key_differences"]) {
		fmt.Fprintf(&b, "- %s\n", d)
	}
	b.WriteString("\n")

	section(&b, "Conclusions", str(rep["conclusions"]))
	return b.String()
}

func section(b *strings.Builder, heading, body string) {
	fmt.Fprintf(b, "## %s\n\n%s\n\n", heading, orNoData(body))
}

func str(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

func strs(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := str(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func orNoData(s string) string {
	if strings.TrimSpace(s) == "" {
		return "_No data_"
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
