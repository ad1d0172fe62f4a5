package model

import "context"

// Uploader pushes local file bytes to the remote files API and returns the
// remote file id the rest of the pipeline refers to.
type Uploader interface {
	Upload(ctx context.Context, absPath string) (string, error)
}

// Extractor asks the remote model for the fixed attribute set of an uploaded
// document. The returned map is raw model output; the reconciler validates it
// against the attribute schema before accepting it into a record.
type Extractor interface {
	Extract(ctx context.Context, remoteFileID, filenameHint string) (AttributeSet, error)
}

// IndexSync keeps remote search-index membership aligned with the ledger.
// EnsureIndex is idempotent: a valid existing id is returned unchanged.
type IndexSync interface {
	EnsureIndex(ctx context.Context, existingID string) (string, error)
	Attach(ctx context.Context, remoteFileID, indexID string) error
	Detach(ctx context.Context, remoteFileID, indexID string) error
}

// Searcher runs a semantic query against the remote index on behalf of the
// report generator's file_search tool.
type Searcher interface {
	Search(ctx context.Context, indexID, query string, maxResults int) ([]SearchHit, error)
}

// ReportSession is one open generation conversation. Next submits the
// previous turn's tool results in a single batch and returns the model's
// next turn; instruction, when non-empty, replaces the default continuation
// prompt (used to re-ask after a malformed final answer).
type ReportSession interface {
	Next(ctx context.Context, results []ToolResult, instruction string) (GenerationTurn, error)
}

// ReportModel opens generation sessions primed with the resolved period, the
// report schema, and the tool declarations.
type ReportModel interface {
	Start(ctx context.Context, period ReportPeriod, indexID string) (ReportSession, error)
}

// RunStore persists reconciliation run history.
type RunStore interface {
	Init(ctx context.Context) error
	RecordRun(ctx context.Context, run RunSummary) error
	RecentRuns(ctx context.Context, limit int) ([]RunSummary, error)
	Close() error
}
