package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesaloy3/hospitality-outlook/internal/config"
	"github.com/jamesaloy3/hospitality-outlook/internal/ingest"
	"github.com/jamesaloy3/hospitality-outlook/internal/ledger"
	"github.com/jamesaloy3/hospitality-outlook/internal/model"
	"github.com/jamesaloy3/hospitality-outlook/internal/openai"
	"github.com/jamesaloy3/hospitality-outlook/internal/store"
)

var ingestFlags struct {
	Folder  string
	Recover bool
}

var ingestCmd = &cobra.Command{
	Use:   "ingest-folder",
	Short: "Reconcile a folder of PDFs against the ledger and the remote index",
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFlags.Folder, "folder", "", "folder to ingest (default: ingest.folder from config)")
	ingestCmd.Flags().BoolVar(&ingestFlags.Recover, "recover", false, "reset a corrupt ledger instead of failing")
}

func runIngest(cmd *cobra.Command, _ []string) error {
	var overrides *config.Overrides
	if ingestFlags.Folder != "" {
		overrides = &config.Overrides{Folder: &ingestFlags.Folder}
	}
	cfg, err := loadConfigWith(overrides)
	if err != nil {
		exitWith(ExitConfigInvalid, err.Error())
	}
	log := newLogger()
	defer func() { _ = log.Sync() }()
	out := newStyles(os.Stdout)

	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	release, err := ledger.Lock(cfg.StateDir)
	if err != nil {
		if errors.Is(err, model.ErrLedgerLocked) {
			exitWith(ExitLedgerLocked, err.Error())
		}
		return err
	}
	defer release()

	client := openai.NewClient(openai.Config{
		APIKey:       cfg.OpenAI.APIKey,
		BaseURL:      cfg.OpenAI.BaseURL,
		ExtractModel: cfg.OpenAI.ExtractModel,
		ReportModel:  cfg.OpenAI.ReportModel,
		Timeout:      cfg.OpenAI.Timeout(),
	}, log)

	runs := store.NewSQLiteRunLog(cfg.RunLogPath())
	if err := runs.Init(cmd.Context()); err != nil {
		return fmt.Errorf("init run history: %w", err)
	}
	defer func() { _ = runs.Close() }()

	rec := &ingest.Reconciler{
		Fingerprint: ingest.Fingerprint{KeyOnContentOnly: cfg.Ingest.KeyOnContentOnly},
		Store:       ledger.NewStore(cfg.StateDir),
		Uploader:    client,
		Extractor:   client,
		Sync:        client,
		Runs:        runs,
		Log:         log,
	}

	sum, err := rec.Run(cmd.Context(), cfg.Ingest.Folder, ingestFlags.Recover)
	if err != nil {
		if errors.Is(err, model.ErrCorruptLedger) {
			exitWith(ExitLedgerCorrupt, err.Error()+"\nRe-run with --recover to reset the ledger.")
		}
		return err
	}

	fmt.Println(out.Header.Render("Ingestion complete"))
	fmt.Println(out.Key.Render("  folder:"), sum.Folder)
	fmt.Println(out.Key.Render("  new:"), sum.New)
	fmt.Println(out.Key.Render("  changed:"), sum.Changed)
	fmt.Println(out.Key.Render("  skipped:"), sum.Skipped)
	fmt.Println(out.Key.Render("  detached:"), sum.Detached)
	if sum.Failed > 0 {
		fmt.Println(out.Warning.Render(fmt.Sprintf("  failed: %d", sum.Failed)))
		for _, doc := range sum.Documents {
			if doc.Outcome == model.OutcomeFailed {
				fmt.Println(out.Dim.Render("    " + doc.RelPath + ": " + doc.Detail))
			}
		}
	}
	return nil
}

// loadConfigWith merges the global flag overrides with cmd-specific ones.
func loadConfigWith(extra *config.Overrides) (*config.Config, error) {
	merged := &config.Overrides{}
	if globalFlags.StateDir != "" {
		merged.StateDir = &globalFlags.StateDir
	}
	if extra != nil && extra.Folder != nil {
		merged.Folder = extra.Folder
	}
	return config.Load(config.Options{
		ConfigPath: globalFlags.ConfigPath,
		Overrides:  merged,
	})
}
