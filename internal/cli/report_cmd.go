package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesaloy3/hospitality-outlook/internal/ledger"
	"github.com/jamesaloy3/hospitality-outlook/internal/model"
	"github.com/jamesaloy3/hospitality-outlook/internal/openai"
	"github.com/jamesaloy3/hospitality-outlook/internal/period"
	"github.com/jamesaloy3/hospitality-outlook/internal/report"
)

var reportFlags struct {
	Period  string
	Quarter string
	Month   int
	Year    int
	Out     string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the lodging industry outlook for a period",
	Long: "Generates the structured outlook report through a tool-calling model session.\n" +
		"With no period flags, the most recently opened earnings season is used.",
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFlags.Period, "period", "", "free-text period label")
	reportCmd.Flags().StringVar(&reportFlags.Quarter, "quarter", "", "fiscal quarter, e.g. Q2 (requires --year)")
	reportCmd.Flags().IntVar(&reportFlags.Month, "month", 0, "calendar month 1-12 (requires --year)")
	reportCmd.Flags().IntVar(&reportFlags.Year, "year", 0, "year for --quarter or --month")
	reportCmd.Flags().StringVar(&reportFlags.Out, "out", "", "output directory (default: report.out_dir from config)")
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		exitWith(ExitConfigInvalid, err.Error())
	}
	log := newLogger()
	defer func() { _ = log.Sync() }()
	out := newStyles(os.Stdout)

	p, err := period.Resolve(period.Input{
		Text:    reportFlags.Period,
		Quarter: reportFlags.Quarter,
		Month:   reportFlags.Month,
		Year:    reportFlags.Year,
	}, time.Now())
	if err != nil {
		if errors.Is(err, model.ErrConflictingPeriod) {
			exitWith(ExitConfigInvalid, err.Error())
		}
		return err
	}

	led, err := ledger.NewStore(cfg.StateDir).Load(false)
	if err != nil {
		if errors.Is(err, model.ErrCorruptLedger) {
			exitWith(ExitLedgerCorrupt, err.Error())
		}
		return err
	}
	if led.RemoteIndexID == "" {
		exitWith(ExitGenericError, "no search index yet; run 'hospitality-outlook init' and ingest documents first")
	}
	snap := report.NewSnapshot(led)
	if len(snap.Files) == 0 {
		fmt.Println(out.Warning.Render("Warning: no documents are attached to the index; the report will lack sources."))
	}

	client := openai.NewClient(openai.Config{
		APIKey:       cfg.OpenAI.APIKey,
		BaseURL:      cfg.OpenAI.BaseURL,
		ExtractModel: cfg.OpenAI.ExtractModel,
		ReportModel:  cfg.OpenAI.ReportModel,
		Timeout:      cfg.OpenAI.Timeout(),
	}, log)

	gen := &report.Generator{
		Model:         client,
		Search:        client,
		Log:           log,
		MaxTurns:      cfg.Report.MaxTurns,
		SchemaRetries: &cfg.Report.SchemaRetries,
		SearchResults: cfg.Report.SearchResults,
	}

	fmt.Println(out.Header.Render("Generating outlook for " + p.Label))
	res, err := gen.Generate(cmd.Context(), p, snap)
	if err != nil {
		if errors.Is(err, model.ErrTurnLimitExceeded) || errors.Is(err, model.ErrReportSchemaMismatch) {
			exitWith(ExitGenerationFailed, err.Error())
		}
		return err
	}

	outDir := reportFlags.Out
	if outDir == "" {
		outDir = cfg.Report.OutDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	stem := period.FileStem(p)
	jsonPath := filepath.Join(outDir, stem+".json")
	mdPath := filepath.Join(outDir, stem+".md")
	if err := os.WriteFile(jsonPath, append(res.ReportJSON, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", jsonPath, err)
	}
	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(res.Report, p.Label)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", mdPath, err)
	}

	fmt.Println(out.Success.Render("Report written."))
	fmt.Println(out.Key.Render("  markdown:"), mdPath)
	fmt.Println(out.Key.Render("  json:"), jsonPath)
	fmt.Println(out.Key.Render("  turns:"), res.Turns)
	return nil
}
