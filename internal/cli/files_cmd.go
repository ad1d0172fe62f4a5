package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesaloy3/hospitality-outlook/internal/attrs"
	"github.com/jamesaloy3/hospitality-outlook/internal/ledger"
	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

var listFilesCmd = &cobra.Command{
	Use:   "list-files",
	Short: "List the ingested documents and their index membership",
	RunE:  runListFiles,
}

var showAttributesCmd = &cobra.Command{
	Use:   "show-attributes <path-or-id>",
	Short: "Show the extracted attributes of one document",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowAttributes,
}

var exportFlags struct {
	Out string
}

var exportAttributesCmd = &cobra.Command{
	Use:   "export-attributes",
	Short: "Export all extracted attributes as JSON",
	RunE:  runExportAttributes,
}

func init() {
	exportAttributesCmd.Flags().StringVar(&exportFlags.Out, "out", "", "write to file instead of stdout")
}

// readLedger loads the ledger for the inspection commands; they never take
// the run lock because they only read.
func readLedger() (*model.Ledger, error) {
	cfg, err := loadConfig(true)
	if err != nil {
		exitWith(ExitConfigInvalid, err.Error())
	}
	led, err := ledger.NewStore(cfg.StateDir).Load(false)
	if err != nil {
		if errors.Is(err, model.ErrCorruptLedger) {
			exitWith(ExitLedgerCorrupt, err.Error())
		}
		return nil, err
	}
	return led, nil
}

func runListFiles(_ *cobra.Command, _ []string) error {
	led, err := readLedger()
	if err != nil {
		return err
	}
	out := newStyles(os.Stdout)

	listing := formatFileList(led)
	if listing == "" {
		fmt.Println(out.Dim.Render("No documents ingested yet."))
		return nil
	}
	fmt.Println(out.Header.Render("Documents"))
	fmt.Print(listing)
	fmt.Println(out.Dim.Render("  (* attached to the search index)"))
	return nil
}

func runShowAttributes(_ *cobra.Command, args []string) error {
	led, err := readLedger()
	if err != nil {
		return err
	}

	rec, ok := led.ActiveByPath(args[0])
	if !ok {
		rec, ok = led.Documents[args[0]]
	}
	if !ok {
		exitWith(ExitGenericError, fmt.Sprintf("no document for %q; try 'hospitality-outlook list-files'", args[0]))
	}
	fmt.Print(formatAttributes(rec))
	return nil
}

func runExportAttributes(_ *cobra.Command, _ []string) error {
	led, err := readLedger()
	if err != nil {
		return err
	}

	raw, err := exportAttributes(led)
	if err != nil {
		return err
	}
	if exportFlags.Out == "" {
		fmt.Println(string(raw))
		return nil
	}
	if err := os.WriteFile(exportFlags.Out, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", exportFlags.Out, err)
	}
	out := newStyles(os.Stdout)
	fmt.Println(out.Success.Render("Exported."))
	fmt.Println(out.Key.Render("  file:"), exportFlags.Out)
	return nil
}

// formatFileList renders one line per active document, sorted by rel path.
func formatFileList(led *model.Ledger) string {
	var b strings.Builder
	for _, rec := range led.SortedRecords() {
		if rec.Superseded {
			continue
		}
		marker := " "
		if rec.IndexMember {
			marker = "*"
		}
		title, _ := rec.Attributes["title"].(string)
		fmt.Fprintf(&b, "  %s %-14s %-40s %s\n", marker, shortID(rec.DocumentID), rec.RelPath, title)
	}
	return b.String()
}

// formatAttributes renders every schema field of one record, blanks as "-".
func formatAttributes(rec model.DocumentRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", rec.RelPath, rec.DocumentID)
	for _, name := range attrs.Names() {
		fmt.Fprintf(&b, "  %-18s %s\n", name+":", attributeString(rec.Attributes[name]))
	}
	return b.String()
}

type attributeExport struct {
	RelPath      string             `json:"rel_path"`
	DocumentID   string             `json:"document_id"`
	RemoteFileID string             `json:"remote_file_id,omitempty"`
	IndexMember  bool               `json:"index_member"`
	Attributes   model.AttributeSet `json:"attributes,omitempty"`
}

// exportAttributes serializes the active records, sorted by rel path.
func exportAttributes(led *model.Ledger) ([]byte, error) {
	out := []attributeExport{}
	for _, rec := range led.SortedRecords() {
		if rec.Superseded {
			continue
		}
		out = append(out, attributeExport{
			RelPath:      rec.RelPath,
			DocumentID:   rec.DocumentID,
			RemoteFileID: rec.RemoteFileID,
			IndexMember:  rec.IndexMember,
			Attributes:   rec.Attributes,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

func attributeString(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		if val == "" {
			return "-"
		}
		return val
	case []string:
		if len(val) == 0 {
			return "-"
		}
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		if len(parts) == 0 {
			return "-"
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
