package model

import (
	"sort"
	"time"
)

// AttributeSet maps attribute names to extracted values. Values are strings,
// numbers, or arrays of strings, exactly as the extraction schema allows.
type AttributeSet map[string]any

// DocumentRecord is one ingested file as the ledger remembers it.
//
// DocumentID is derived from the file identity and is never reused for
// different content: when content changes a new record with a new id is
// created and the old one is marked superseded instead of being mutated.
type DocumentRecord struct {
	DocumentID   string       `json:"document_id"`
	RelPath      string       `json:"rel_path"`
	ContentHash  string       `json:"content_hash"`
	SizeBytes    int64        `json:"size_bytes"`
	PageCount    int          `json:"page_count,omitempty"`
	RemoteFileID string       `json:"remote_file_id,omitempty"`
	IndexMember  bool         `json:"index_member"`
	Attributes   AttributeSet `json:"attributes,omitempty"`
	IngestedAt   time.Time    `json:"ingested_at"`
	Superseded   bool         `json:"superseded,omitempty"`
	SupersededAt *time.Time   `json:"superseded_at,omitempty"`
}

// Ledger is the full local record of ingested documents plus the identity of
// the remote search index they are attached to. It is owned by the
// reconciler; the report generator only ever sees an immutable snapshot.
type Ledger struct {
	RemoteIndexID string                    `json:"remote_index_id,omitempty"`
	Documents     map[string]DocumentRecord `json:"documents"`

	// Failures maps rel paths whose last ingestion attempt failed to a
	// short reason. Entries are cleared when the document later succeeds.
	Failures map[string]string `json:"failures,omitempty"`
}

// NewLedger returns an empty ledger with an allocated document map.
func NewLedger() *Ledger {
	return &Ledger{Documents: map[string]DocumentRecord{}}
}

// RecordFailure marks relPath as failed with the given reason.
func (l *Ledger) RecordFailure(relPath, reason string) {
	if l.Failures == nil {
		l.Failures = map[string]string{}
	}
	l.Failures[relPath] = reason
}

// ClearFailure removes any failure marker for relPath.
func (l *Ledger) ClearFailure(relPath string) {
	delete(l.Failures, relPath)
}

// Upsert stores rec under its DocumentID.
func (l *Ledger) Upsert(rec DocumentRecord) {
	if l.Documents == nil {
		l.Documents = map[string]DocumentRecord{}
	}
	l.Documents[rec.DocumentID] = rec
}

// MarkSuperseded flags the record for docID without removing it; superseded
// records stay in the ledger for audit but drop out of index membership.
func (l *Ledger) MarkSuperseded(docID string, at time.Time) bool {
	rec, ok := l.Documents[docID]
	if !ok {
		return false
	}
	rec.Superseded = true
	rec.SupersededAt = &at
	l.Documents[docID] = rec
	return true
}

// ActiveByPath returns the non-superseded record for relPath, if any.
func (l *Ledger) ActiveByPath(relPath string) (DocumentRecord, bool) {
	for _, rec := range l.Documents {
		if rec.RelPath == relPath && !rec.Superseded {
			return rec, true
		}
	}
	return DocumentRecord{}, false
}

// SortedRecords returns all records ordered by rel path then document id, so
// iteration order is deterministic for retries and tests.
func (l *Ledger) SortedRecords() []DocumentRecord {
	recs := make([]DocumentRecord, 0, len(l.Documents))
	for _, rec := range l.Documents {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].RelPath != recs[j].RelPath {
			return recs[i].RelPath < recs[j].RelPath
		}
		return recs[i].DocumentID < recs[j].DocumentID
	})
	return recs
}

// Clone returns a deep copy, used to take the per-session snapshot the report
// generator reads from.
func (l *Ledger) Clone() *Ledger {
	out := &Ledger{
		RemoteIndexID: l.RemoteIndexID,
		Documents:     make(map[string]DocumentRecord, len(l.Documents)),
	}
	for id, rec := range l.Documents {
		if rec.Attributes != nil {
			attrs := make(AttributeSet, len(rec.Attributes))
			for k, v := range rec.Attributes {
				attrs[k] = v
			}
			rec.Attributes = attrs
		}
		if rec.SupersededAt != nil {
			at := *rec.SupersededAt
			rec.SupersededAt = &at
		}
		out.Documents[id] = rec
	}
	if l.Failures != nil {
		out.Failures = make(map[string]string, len(l.Failures))
		for p, reason := range l.Failures {
			out.Failures[p] = reason
		}
	}
	return out
}

// PeriodKind distinguishes the three accepted reporting-period shapes.
type PeriodKind string

const (
	PeriodQuarter  PeriodKind = "quarter"
	PeriodMonth    PeriodKind = "month"
	PeriodFreeform PeriodKind = "freeform"
)

// ReportPeriod is the canonical period descriptor. Immutable once resolved;
// Label feeds both the model prompt and default output file naming.
type ReportPeriod struct {
	Kind    PeriodKind
	Year    int
	Quarter int // 1-4 when Kind == PeriodQuarter
	Month   int // 1-12 when Kind == PeriodMonth
	Label   string
}

// ToolCall is a structured request the model emits mid-session. Transient;
// lives only for the duration of one generation turn.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult carries a tool's answer back to the model. Content is the JSON
// payload; IsError marks a result the model should treat as a failure.
type ToolResult struct {
	CallID  string
	Content string
	IsError bool
}

// GenerationTurn is one model response: either tool calls to execute or, when
// ToolCalls is empty, the candidate final answer in Text.
type GenerationTurn struct {
	Text      string
	ToolCalls []ToolCall
}

// SearchHit is one semantic-search result from the remote index.
type SearchHit struct {
	RemoteFileID string  `json:"file_id"`
	Filename     string  `json:"filename,omitempty"`
	Score        float64 `json:"score"`
	Snippet      string  `json:"snippet,omitempty"`
}

// Outcome classifies what the reconciler did with one candidate file.
type Outcome string

const (
	OutcomeNew     Outcome = "new"
	OutcomeChanged Outcome = "changed"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// DocumentOutcome is the per-document line of a reconciliation run.
type DocumentOutcome struct {
	RelPath    string
	DocumentID string
	Outcome    Outcome
	Detail     string
}

// RunSummary records one reconciliation run for the run-history store.
type RunSummary struct {
	RunID      string
	Folder     string
	StartedAt  time.Time
	FinishedAt time.Time
	New        int
	Changed    int
	Skipped    int
	Failed     int
	Detached   int
	Documents  []DocumentOutcome
}
