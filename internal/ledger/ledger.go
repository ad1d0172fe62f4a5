// Package ledger persists the sidecar document ledger. The on-disk form is a
// single JSON file under the state directory; every save goes through a
// write-to-temp-then-rename so an interrupted write never clobbers the
// previous version.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

const ledgerFileName = "ledger.json"

// Store reads and writes the ledger file under a state directory.
type Store struct {
	stateDir string
}

// NewStore returns a store rooted at stateDir. The directory is created on
// first save if missing.
func NewStore(stateDir string) *Store {
	return &Store{stateDir: stateDir}
}

// Path returns the ledger file location.
func (s *Store) Path() string {
	return filepath.Join(s.stateDir, ledgerFileName)
}

// Load reads the full ledger. A missing file is a fresh install and yields an
// empty ledger; an unreadable or unparseable file is ErrCorruptLedger unless
// allowReset is set, in which case an empty ledger is returned so the caller
// can rebuild. Losing extraction history silently is never acceptable, so
// allowReset must come from an explicit user flag.
func (s *Store) Load(allowReset bool) (*model.Ledger, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NewLedger(), nil
		}
		if allowReset {
			return model.NewLedger(), nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", model.ErrCorruptLedger, s.Path(), err)
	}

	var led model.Ledger
	if err := json.Unmarshal(data, &led); err != nil {
		if allowReset {
			return model.NewLedger(), nil
		}
		return nil, fmt.Errorf("%w: parse %s: %v (re-run with --recover to start from an empty ledger)", model.ErrCorruptLedger, s.Path(), err)
	}
	if led.Documents == nil {
		led.Documents = map[string]model.DocumentRecord{}
	}
	return &led, nil
}

// Save writes the ledger atomically: temp file in the same directory, write,
// fsync, chmod, close, rename. A failed save leaves the previous file
// untouched.
func (s *Store) Save(led *model.Ledger) error {
	if err := os.MkdirAll(s.stateDir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(led, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	f, err := os.CreateTemp(s.stateDir, ledgerFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync temp ledger: %w", err)
	}
	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		return fmt.Errorf("chmod temp ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
