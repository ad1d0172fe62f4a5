package ledger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamesaloy3/hospitality-outlook/internal/model"
)

// Lock takes the exclusive advisory lock guarding the ledger's persisted
// location. The lock is a file created O_CREATE|O_EXCL under locks/; if it
// already exists another run is in progress and the caller fails fast with
// ErrLedgerLocked instead of risking an interleaved read-modify-write.
// The returned release function removes the lock and is safe to call once.
func Lock(stateDir string) (release func(), err error) {
	lockDir := filepath.Join(stateDir, "locks")
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	lockPath := filepath.Join(lockDir, "ledger.lock")
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w (lock: %s)", model.ErrLedgerLocked, lockPath)
		}
		return nil, fmt.Errorf("acquire ledger lock: %w", err)
	}
	_ = f.Close()

	return func() { _ = os.Remove(lockPath) }, nil
}
