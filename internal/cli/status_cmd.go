package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesaloy3/hospitality-outlook/internal/ledger"
	"github.com/jamesaloy3/hospitality-outlook/internal/model"
	"github.com/jamesaloy3/hospitality-outlook/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ledger and run-history state from disk",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		exitWith(ExitConfigInvalid, err.Error())
	}
	out := newStyles(os.Stdout)

	lstore := ledger.NewStore(cfg.StateDir)
	led, err := lstore.Load(false)
	if err != nil {
		if errors.Is(err, model.ErrCorruptLedger) {
			exitWith(ExitLedgerCorrupt, err.Error())
		}
		return err
	}

	active, attached, superseded := 0, 0, 0
	for _, rec := range led.Documents {
		if rec.Superseded {
			superseded++
			continue
		}
		active++
		if rec.IndexMember {
			attached++
		}
	}

	fmt.Println(out.Header.Render("Ledger"))
	fmt.Println(out.Key.Render("  path:"), lstore.Path())
	fmt.Println(out.Key.Render("  index:"), orDash(led.RemoteIndexID))
	fmt.Println(out.Key.Render("  active documents:"), active)
	fmt.Println(out.Key.Render("  attached to index:"), attached)
	fmt.Println(out.Key.Render("  superseded:"), superseded)
	if len(led.Failures) > 0 {
		fmt.Println(out.Warning.Render(fmt.Sprintf("  failed last attempt: %d", len(led.Failures))))
		for rel, reason := range led.Failures {
			fmt.Println(out.Dim.Render("    " + rel + ": " + reason))
		}
	}

	runs := store.NewSQLiteRunLog(cfg.RunLogPath())
	defer func() { _ = runs.Close() }()
	recent, err := runs.RecentRuns(cmd.Context(), 5)
	if err != nil {
		fmt.Println(out.Dim.Render("  (no run history: " + err.Error() + ")"))
		return nil
	}

	fmt.Println(out.Header.Render("Recent runs"))
	if len(recent) == 0 {
		fmt.Println(out.Dim.Render("  none"))
		return nil
	}
	for _, run := range recent {
		fmt.Printf("  %s  %s  new=%d changed=%d skipped=%d failed=%d detached=%d\n",
			run.StartedAt.Format("2006-01-02 15:04"), run.RunID[:8],
			run.New, run.Changed, run.Skipped, run.Failed, run.Detached)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
