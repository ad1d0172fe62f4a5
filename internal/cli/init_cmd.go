package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesaloy3/hospitality-outlook/internal/ledger"
	"github.com/jamesaloy3/hospitality-outlook/internal/openai"
	"github.com/jamesaloy3/hospitality-outlook/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the state directory and the remote search index",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		exitWith(ExitConfigInvalid, err.Error())
	}
	log := newLogger()
	defer func() { _ = log.Sync() }()
	out := newStyles(os.Stdout)

	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	lstore := ledger.NewStore(cfg.StateDir)
	led, err := lstore.Load(false)
	if err != nil {
		exitWith(ExitLedgerCorrupt, err.Error())
	}

	client := openai.NewClient(openai.Config{
		APIKey:       cfg.OpenAI.APIKey,
		BaseURL:      cfg.OpenAI.BaseURL,
		ExtractModel: cfg.OpenAI.ExtractModel,
		ReportModel:  cfg.OpenAI.ReportModel,
		Timeout:      cfg.OpenAI.Timeout(),
	}, log)

	indexID, err := client.EnsureIndex(cmd.Context(), led.RemoteIndexID)
	if err != nil {
		return err
	}
	led.RemoteIndexID = indexID
	if err := lstore.Save(led); err != nil {
		return err
	}

	runs := store.NewSQLiteRunLog(cfg.RunLogPath())
	if err := runs.Init(cmd.Context()); err != nil {
		return fmt.Errorf("init run history: %w", err)
	}
	defer func() { _ = runs.Close() }()

	fmt.Println(out.Success.Render("Initialized."))
	fmt.Println(out.Key.Render("  state:"), cfg.StateDir)
	fmt.Println(out.Key.Render("  index:"), indexID)
	fmt.Println(out.Key.Render("  ledger:"), lstore.Path())
	if !strings.HasPrefix(cfg.Ingest.Folder, "/") {
		fmt.Println(out.Dim.Render(fmt.Sprintf("Next: place PDFs under %s and run 'hospitality-outlook ingest-folder'.", cfg.Ingest.Folder)))
	}
	return nil
}
