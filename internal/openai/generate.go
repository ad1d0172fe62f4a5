package openai

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jamesaloy3/hospitality-outlook/internal/model"
	"github.com/jamesaloy3/hospitality-outlook/internal/report"
)

// responsesResponse is the shared wire shape of a /responses call. Output
// items are kept raw so a session can feed them back verbatim on the next
// turn.
type responsesResponse struct {
	Output []json.RawMessage `json:"output"`
}

type outputItem struct {
	Type      string `json:"type"`
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Content   []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (r responsesResponse) items() []outputItem {
	items := make([]outputItem, 0, len(r.Output))
	for _, raw := range r.Output {
		var item outputItem
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}

func (r responsesResponse) outputText() string {
	for _, item := range r.items() {
		if item.Type != "message" {
			continue
		}
		for _, chunk := range item.Content {
			if chunk.Type == "output_text" && chunk.Text != "" {
				return chunk.Text
			}
		}
	}
	return ""
}

// reportSession is one open generation conversation. The accumulated input
// carries every model output item verbatim plus the function_call_output
// items we append, the way the responses API threads tool use.
type reportSession struct {
	client *Client
	tools  []map[string]any
	input  []any
}

// Start opens a generation session primed with the analyst instructions, the
// resolved period, and the tool declarations.
func (c *Client) Start(_ context.Context, period model.ReportPeriod, indexID string) (model.ReportSession, error) {
	tools := make([]map[string]any, 0, 2)
	for _, decl := range []report.ToolDecl{report.FileListDecl(), report.FileSearchDecl()} {
		tools = append(tools, map[string]any{
			"type":        "function",
			"name":        decl.Name,
			"description": decl.Description,
			"parameters":  decl.Parameters,
		})
	}
	return &reportSession{
		client: c,
		tools:  tools,
		input: []any{
			map[string]any{"role": "system", "content": report.SystemInstructions + report.SchemaJSON()},
			map[string]any{"role": "user", "content": report.UserPrompt(period, indexID)},
		},
	}, nil
}

func (s *reportSession) Next(ctx context.Context, results []model.ToolResult, instruction string) (model.GenerationTurn, error) {
	for _, res := range results {
		s.input = append(s.input, map[string]any{
			"type":    "function_call_output",
			"call_id": res.CallID,
			"output":  res.Content,
		})
	}

	body := map[string]any{
		"model": s.client.cfg.ReportModel,
		"input": s.input,
		"tools": s.tools,
	}
	if instruction == "" && len(results) > 0 {
		instruction = report.ContinueInstruction
	}
	if instruction != "" {
		body["instructions"] = instruction
	}

	var resp responsesResponse
	if err := s.client.doJSON(ctx, http.MethodPost, "/responses", body, &resp); err != nil {
		return model.GenerationTurn{}, err
	}
	for _, raw := range resp.Output {
		s.input = append(s.input, raw)
	}

	turn := model.GenerationTurn{Text: resp.outputText()}
	for _, item := range resp.items() {
		if item.Type != "function_call" {
			continue
		}
		args := map[string]any{}
		if item.Arguments != "" {
			if err := json.Unmarshal([]byte(item.Arguments), &args); err != nil {
				s.client.log.Warnw("unparseable tool arguments", "tool", item.Name, "error", err)
				args = map[string]any{}
			}
		}
		turn.ToolCalls = append(turn.ToolCalls, model.ToolCall{
			ID:   item.CallID,
			Name: item.Name,
			Args: args,
		})
	}
	return turn, nil
}
