package report

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/jamesaloy3/hospitality-outlook/internal/attrs"
	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

// FileEntry is one inventory row the file_list tool reports to the model.
type FileEntry struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	RelPath    string             `json:"rel_path"`
	Attributes model.AttributeSet `json:"attributes"`
}

// Snapshot is the immutable ledger view a generation session reads from. It
// is taken once at session start; concurrent reconciliation never changes
// what an open session sees.
type Snapshot struct {
	IndexID string
	Files   []FileEntry
}

// NewSnapshot captures the active, index-attached documents of led in rel
// path order.
func NewSnapshot(led *model.Ledger) Snapshot {
	snap := Snapshot{IndexID: led.RemoteIndexID}
	for _, rec := range led.Clone().SortedRecords() {
		if rec.Superseded || !rec.IndexMember {
			continue
		}
		title, _ := rec.Attributes["title"].(string)
		if strings.TrimSpace(title) == "" {
			title = path.Base(rec.RelPath)
		}
		snap.Files = append(snap.Files, FileEntry{
			ID:         rec.RemoteFileID,
			Title:      title,
			RelPath:    rec.RelPath,
			Attributes: rec.Attributes,
		})
	}
	sort.Slice(snap.Files, func(i, j int) bool { return snap.Files[i].RelPath < snap.Files[j].RelPath })
	return snap
}

// FileList serves one file_list tool call. An optional "filter" argument, a
// map of attribute name to value, narrows the inventory by equality (string
// attributes) or containment (list attributes).
func (s Snapshot) FileList(args map[string]any) (string, error) {
	files := s.Files
	if rawFilter, ok := args["filter"].(map[string]any); ok && len(rawFilter) > 0 {
		filtered := make([]FileEntry, 0, len(files))
		for _, f := range files {
			if matchesFilter(f.Attributes, rawFilter) {
				filtered = append(filtered, f)
			}
		}
		files = filtered
	}
	if files == nil {
		files = []FileEntry{}
	}
	payload := map[string]any{
		"vector_store_id":      s.IndexID,
		"available_attributes": attrs.Names(),
		"files":                files,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode file list: %w", err)
	}
	return string(raw), nil
}

func matchesFilter(set model.AttributeSet, filter map[string]any) bool {
	for name, want := range filter {
		wantStr := fmt.Sprintf("%v", want)
		switch have := set[name].(type) {
		case string:
			if !strings.EqualFold(have, wantStr) {
				return false
			}
		case []string:
			if !containsFold(have, wantStr) {
				return false
			}
		case []any:
			items := make([]string, 0, len(have))
			for _, item := range have {
				items = append(items, fmt.Sprintf("%v", item))
			}
			if !containsFold(items, wantStr) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func containsFold(items []string, want string) bool {
	for _, item := range items {
		if strings.EqualFold(item, want) {
			return true
		}
	}
	return false
}

// ToolDecl is a provider-neutral function-tool declaration.
type ToolDecl struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// FileListDecl declares the file_list tool.
func FileListDecl() ToolDecl {
	return ToolDecl{
		Name:        "file_list",
		Description: "List the documents attached to the search index with their normalized attributes. Optionally pass filter, a map of attribute name to value, to narrow the inventory.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"filter": map[string]any{
					"type":        "object",
					"description": "Attribute name to value equality filter, e.g. {\"fiscal_quarter\": \"Q2\"}.",
				},
			},
			"additionalProperties": false,
		},
	}
}

// FileSearchDecl declares the file_search tool, served by the remote index.
func FileSearchDecl() ToolDecl {
	return ToolDecl{
		Name:        "file_search",
		Description: "Run a semantic search over the attached documents and return the most relevant passages.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query":       map[string]any{"type": "string", "description": "Natural-language search query."},
				"max_results": map[string]any{"type": "integer", "description": "Maximum passages to return."},
			},
			"required":             []string{"query"},
			"additionalProperties": false,
		},
	}
}
