package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

func TestLoadMissingFileIsEmptyLedger(t *testing.T) {
	s := NewStore(t.TempDir())
	led, err := s.Load(false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(led.Documents) != 0 || led.RemoteIndexID != "" {
		t.Fatalf("expected empty ledger, got %+v", led)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())
	led := model.NewLedger()
	led.RemoteIndexID = "vs_123"
	led.Upsert(model.DocumentRecord{
		DocumentID:   "doc-a",
		RelPath:      "a.pdf",
		ContentHash:  "hash-a",
		RemoteFileID: "file-a",
		IndexMember:  true,
		Attributes:   model.AttributeSet{"title": "A", "metrics_mentioned": []string{"RevPAR"}},
		IngestedAt:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	})

	if err := s.Save(led); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.RemoteIndexID != "vs_123" {
		t.Errorf("RemoteIndexID = %q", got.RemoteIndexID)
	}
	rec, ok := got.Documents["doc-a"]
	if !ok {
		t.Fatal("doc-a missing after round trip")
	}
	if rec.RelPath != "a.pdf" || !rec.IndexMember || rec.RemoteFileID != "file-a" {
		t.Errorf("record mismatch: %+v", rec)
	}
	if rec.Attributes["title"] != "A" {
		t.Errorf("attributes mismatch: %+v", rec.Attributes)
	}
}

func TestLoadCorruptFails(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := s.Load(false)
	if !errors.Is(err, model.ErrCorruptLedger) {
		t.Fatalf("got %v, want ErrCorruptLedger", err)
	}

	led, err := s.Load(true)
	if err != nil {
		t.Fatalf("Load with reset: %v", err)
	}
	if len(led.Documents) != 0 {
		t.Fatal("expected empty ledger after reset")
	}
}

func TestSaveDoesNotLeaveTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if err := s.Save(model.NewLedger()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "ledger.json" {
			t.Errorf("unexpected file left behind: %s", e.Name())
		}
	}
}

func TestSavePreservesPreviousOnOverwrite(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	first := model.NewLedger()
	first.RemoteIndexID = "vs_first"
	if err := s.Save(first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second := model.NewLedger()
	second.RemoteIndexID = "vs_second"
	if err := s.Save(second); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.RemoteIndexID != "vs_second" {
		t.Errorf("RemoteIndexID = %q", got.RemoteIndexID)
	}
}

func TestLockExcludesSecondHolder(t *testing.T) {
	dir := t.TempDir()
	release, err := Lock(dir)
	if err != nil {
		t.Fatalf("first Lock: %v", err)
	}

	if _, err := Lock(dir); !errors.Is(err, model.ErrLedgerLocked) {
		t.Fatalf("second Lock: got %v, want ErrLedgerLocked", err)
	}

	release()
	release2, err := Lock(dir)
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	release2()

	if _, err := os.Stat(filepath.Join(dir, "locks", "ledger.lock")); !os.IsNotExist(err) {
		t.Fatalf("lock file should be removed, stat err = %v", err)
	}
}

func TestMarkSuperseded(t *testing.T) {
	led := model.NewLedger()
	led.Upsert(model.DocumentRecord{DocumentID: "d1", RelPath: "a.pdf"})
	at := time.Now()
	if !led.MarkSuperseded("d1", at) {
		t.Fatal("MarkSuperseded returned false for existing record")
	}
	if led.MarkSuperseded("missing", at) {
		t.Fatal("MarkSuperseded returned true for missing record")
	}
	if rec := led.Documents["d1"]; !rec.Superseded || rec.SupersededAt == nil {
		t.Errorf("record not superseded: %+v", rec)
	}
	if _, ok := led.ActiveByPath("a.pdf"); ok {
		t.Error("superseded record still active by path")
	}
}
