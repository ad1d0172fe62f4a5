package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

func inspectionLedger() *model.Ledger {
	led := model.NewLedger()
	led.RemoteIndexID = "vs-test"
	led.Upsert(model.DocumentRecord{
		DocumentID:   "aaaabbbbccccdddd",
		RelPath:      "mar_q2.pdf",
		RemoteFileID: "file-a",
		IndexMember:  true,
		Attributes: model.AttributeSet{
			"title":             "MAR Q2 2025",
			"doc_type":          "earnings_transcript",
			"fiscal_quarter":    "Q2",
			"metrics_mentioned": []string{"RevPAR", "ADR"},
		},
	})
	led.Upsert(model.DocumentRecord{
		DocumentID:  "eeeeffff00001111",
		RelPath:     "hlt_q1.pdf",
		IndexMember: false,
		Attributes:  model.AttributeSet{"title": "HLT Q1 2025"},
	})
	led.Upsert(model.DocumentRecord{
		DocumentID: "old0old0old0old0",
		RelPath:    "mar_q2.pdf",
		Superseded: true,
	})
	return led
}

func TestFormatFileList(t *testing.T) {
	out := formatFileList(inspectionLedger())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("listing = %q, want 2 lines without the superseded record", out)
	}
	// sorted by rel path, attached documents starred
	if !strings.Contains(lines[0], "hlt_q1.pdf") || strings.Contains(lines[0], "*") {
		t.Fatalf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "mar_q2.pdf") || !strings.Contains(lines[1], "*") {
		t.Fatalf("second line = %q", lines[1])
	}
	if !strings.Contains(lines[1], "aaaabbbbcccc") || strings.Contains(lines[1], "aaaabbbbccccdddd") {
		t.Fatalf("document id not shortened: %q", lines[1])
	}
	if !strings.Contains(lines[1], "MAR Q2 2025") {
		t.Fatalf("title missing: %q", lines[1])
	}
}

func TestFormatFileListEmpty(t *testing.T) {
	if out := formatFileList(model.NewLedger()); out != "" {
		t.Fatalf("empty ledger listing = %q", out)
	}
}

func TestFormatAttributes(t *testing.T) {
	led := inspectionLedger()
	rec, ok := led.ActiveByPath("mar_q2.pdf")
	if !ok {
		t.Fatal("no active record for mar_q2.pdf")
	}

	out := formatAttributes(rec)
	if !strings.Contains(out, "mar_q2.pdf (aaaabbbbccccdddd)") {
		t.Fatalf("header missing: %q", out)
	}
	for _, want := range []string{
		"title:",
		"MAR Q2 2025",
		"metrics_mentioned:",
		"RevPAR, ADR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// fields the extraction left blank print as dashes
	var regionLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "region:") {
			regionLine = line
		}
	}
	if regionLine == "" || !strings.HasSuffix(strings.TrimSpace(regionLine), "-") {
		t.Fatalf("blank region not dashed: %q\n%s", regionLine, out)
	}
}

func TestExportAttributes(t *testing.T) {
	raw, err := exportAttributes(inspectionLedger())
	if err != nil {
		t.Fatalf("exportAttributes: %v", err)
	}

	var entries []attributeExport
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("exported %d entries, want 2 active", len(entries))
	}
	if entries[0].RelPath != "hlt_q1.pdf" || entries[1].RelPath != "mar_q2.pdf" {
		t.Fatalf("export order = %s, %s", entries[0].RelPath, entries[1].RelPath)
	}
	if !entries[1].IndexMember || entries[1].RemoteFileID != "file-a" {
		t.Fatalf("entry = %+v", entries[1])
	}
	if entries[1].Attributes["title"] != "MAR Q2 2025" {
		t.Fatalf("attributes = %v", entries[1].Attributes)
	}
}

func TestExportAttributesEmptyLedgerIsEmptyArray(t *testing.T) {
	raw, err := exportAttributes(model.NewLedger())
	if err != nil {
		t.Fatalf("exportAttributes: %v", err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("empty export = %q, want []", raw)
	}
}
