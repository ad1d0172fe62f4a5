package report

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

// State is the generation state machine position.
type State string

const (
	StateAwaitingModel State = "AWAITING_MODEL"
	StateExecutingTool State = "EXECUTING_TOOL"
	StateDone          State = "DONE"
	StateFailed        State = "FAILED"
)

const (
	defaultMaxTurns      = 16
	defaultSchemaRetries = 2
	defaultSearchResults = 8
)

// Generator runs one report-generation session to completion. Each model
// response is either a batch of tool calls, dispatched concurrently and
// answered together, or a candidate final report validated against the
// schema. Malformed finals are re-asked a bounded number of times; the whole
// session is bounded by MaxTurns.
type Generator struct {
	Model  model.ReportModel
	Search model.Searcher
	Log    *zap.SugaredLogger

	MaxTurns int
	// SchemaRetries nil means the default; an explicit 0 disables retries.
	SchemaRetries *int
	SearchResults int
}

// Result is a finished generation.
type Result struct {
	ReportJSON []byte
	Report     map[string]any
	Turns      int
	State      State
}

func (g *Generator) maxTurns() int {
	if g.MaxTurns > 0 {
		return g.MaxTurns
	}
	return defaultMaxTurns
}

func (g *Generator) schemaRetries() int {
	if g.SchemaRetries != nil && *g.SchemaRetries >= 0 {
		return *g.SchemaRetries
	}
	return defaultSchemaRetries
}

// Generate runs the session for period against the snapshot's index.
// Cancellation is honored between turns; an in-flight turn always completes
// or fails as a unit.
func (g *Generator) Generate(ctx context.Context, period model.ReportPeriod, snap Snapshot) (Result, error) {
	res := Result{State: StateAwaitingModel}

	session, err := g.Model.Start(ctx, period, snap.IndexID)
	if err != nil {
		res.State = StateFailed
		return res, fmt.Errorf("start session: %w", err)
	}

	var (
		pending     []model.ToolResult
		instruction string
		retries     int
	)
	for turn := 1; turn <= g.maxTurns(); turn++ {
		if err := ctx.Err(); err != nil {
			res.State = StateFailed
			return res, err
		}
		res.Turns = turn
		res.State = StateAwaitingModel

		reply, err := session.Next(ctx, pending, instruction)
		if err != nil {
			res.State = StateFailed
			return res, fmt.Errorf("turn %d: %w", turn, err)
		}
		pending, instruction = nil, ""

		if len(reply.ToolCalls) > 0 {
			res.State = StateExecutingTool
			results, err := g.dispatch(ctx, snap, reply.ToolCalls)
			if err != nil {
				res.State = StateFailed
				return res, err
			}
			pending = results
			continue
		}

		raw, err := ExtractJSON(reply.Text)
		if err == nil {
			err = ValidateReport(raw)
		}
		if err != nil {
			if retries >= g.schemaRetries() {
				res.State = StateFailed
				return res, fmt.Errorf("%w: %v", model.ErrReportSchemaMismatch, err)
			}
			retries++
			instruction = RetryInstruction(err)
			g.Log.Warnw("final answer rejected", "turn", turn, "retry", retries, "error", err)
			continue
		}

		var report map[string]any
		if err := json.Unmarshal(raw, &report); err != nil {
			res.State = StateFailed
			return res, fmt.Errorf("decode report: %w", err)
		}
		res.ReportJSON = raw
		res.Report = report
		res.State = StateDone
		g.Log.Infow("report generated", "period", period.Label, "turns", turn)
		return res, nil
	}

	res.State = StateFailed
	return res, model.ErrTurnLimitExceeded
}

// dispatch executes every tool call of one turn concurrently and returns the
// results in call order. Recoverable tool failures become error results the
// model can react to; an unrecoverable adapter failure or cancellation fails
// the turn itself.
func (g *Generator) dispatch(ctx context.Context, snap Snapshot, calls []model.ToolCall) ([]model.ToolResult, error) {
	results := make([]model.ToolResult, len(calls))
	grp, ctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		i, call := i, call
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := g.execute(ctx, snap, call)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (g *Generator) execute(ctx context.Context, snap Snapshot, call model.ToolCall) (model.ToolResult, error) {
	res := model.ToolResult{CallID: call.ID}
	switch call.Name {
	case "file_list":
		content, err := snap.FileList(call.Args)
		if err != nil {
			return errorResult(call.ID, err.Error()), nil
		}
		res.Content = content
	case "file_search":
		query, _ := call.Args["query"].(string)
		if query == "" {
			return errorResult(call.ID, "file_search requires a query"), nil
		}
		max := g.SearchResults
		if max <= 0 {
			max = defaultSearchResults
		}
		if n, ok := call.Args["max_results"].(float64); ok && int(n) > 0 {
			max = int(n)
		}
		hits, err := g.Search.Search(ctx, snap.IndexID, query, max)
		if err != nil {
			// The adapter already performed its bounded retry; only a
			// transient failure is worth feeding back to the model.
			if !model.IsRetryable(err) {
				return model.ToolResult{}, fmt.Errorf("file_search: %w", err)
			}
			g.Log.Warnw("file_search failed", "query", query, "error", err)
			return errorResult(call.ID, err.Error()), nil
		}
		raw, err := json.Marshal(map[string]any{"query": query, "results": hits})
		if err != nil {
			return errorResult(call.ID, err.Error()), nil
		}
		res.Content = string(raw)
	default:
		g.Log.Warnw("unknown tool requested", "tool", call.Name)
		return errorResult(call.ID, fmt.Sprintf("unknown tool %q", call.Name)), nil
	}
	return res, nil
}

func errorResult(callID, message string) model.ToolResult {
	raw, _ := json.Marshal(map[string]string{"error": message})
	return model.ToolResult{CallID: callID, Content: string(raw), IsError: true}
}
