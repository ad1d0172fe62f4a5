package report

import (
	"fmt"
	"strings"

	"github.com/jamesaloy3/hospitality-outlook/internal/attrs"
	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

// SystemInstructions primes the generation session. The workflow mirrors the
// tool surface: one file_list inventory call, then targeted file_search
// queries, then the structured report.
const SystemInstructions = `You are an expert in hospitality, real estate, and financial analysis.

Objective:
- Produce a forward-looking U.S. Lodging Industry Outlook report for the specified period.
- Deliver a comprehensive assessment of relevant data, prevailing opinions, and sentiment, including how these have evolved over time.
- Provide a professional forecast grounded in data analysis and the overall industry landscape.
- Incorporate all pertinent information retrievable from the attached documents.

Required report sections:
1. Summary
2. Demand Trends (segment by travel type and price tier)
3. Economic & Industry Metrics
4. Sentiment Analysis (attributed quotes or paraphrased opinions)
5. Regional Segmentation
6. Emerging Trends
7. Historical Comparison
8. Professional Conclusions

Workflow:
1. Call file_list once to inventory the available data (brands, quarters, regions, segments).
2. Decide which subsets you need and run multiple targeted file_search queries, qualifying the timeframe of every data point.
3. Prioritize data matching the requested period; when it is insufficient, widen the search and state the timeframe of each source.
4. Cite sources inline using file title plus fiscal quarter or brand. Avoid duplicate quotes.

Return ONLY a JSON object conforming to the schema below. For missing data use null or an empty structure and note the gap in the related section.

`

// UserPrompt composes the opening user message for a session.
func UserPrompt(period model.ReportPeriod, indexID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate the U.S. Lodging Industry Outlook for period: %s.\n", period.Label)
	fmt.Fprintf(&b, "Attribute keys available for filtering: %s.\n", strings.Join(attrs.Names(), ", "))
	b.WriteString("Enum guidance (partial):\n")
	for _, name := range []string{"doc_type", "industry", "chain_scale", "customer_segment"} {
		fmt.Fprintf(&b, "  %s: %s\n", name, strings.Join(attrs.Enums()[name], ", "))
	}
	fmt.Fprintf(&b, "Search index: %s.\n", indexID)
	b.WriteString("Return ONLY the JSON object per the following schema:\n")
	b.WriteString(SchemaJSON())
	return b.String()
}

// RetryInstruction re-asks after a final answer failed schema validation.
func RetryInstruction(validationErr error) string {
	return fmt.Sprintf(
		"Your previous answer did not conform to the report schema (%v). Return ONLY the corrected JSON object per the schema, with no surrounding prose.",
		validationErr,
	)
}

// ContinueInstruction resumes the loop after tool results are submitted.
const ContinueInstruction = "Continue. Use file_search as needed. Return ONLY the JSON object per the schema."
