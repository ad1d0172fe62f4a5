package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Fingerprint derives the stable identity of a document from its bytes and,
// by default, its rel path. With KeyOnContentOnly set, identity follows the
// bytes alone, so a renamed file keeps its document id and its extraction.
type Fingerprint struct {
	KeyOnContentOnly bool
}

// HashFile returns the lowercase hex sha256 of the file contents.
func HashFile(absPath string) (string, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", absPath, err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", absPath, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DocumentID derives the ledger key for a document. relPath is normalized to
// forward slashes before hashing so ids are stable across platforms. The id
// is the first 16 bytes of the derivation hash, hex encoded.
func (fp Fingerprint) DocumentID(relPath, contentHash string) string {
	var h [32]byte
	if fp.KeyOnContentOnly {
		h = sha256.Sum256([]byte(contentHash))
	} else {
		norm := NormalizeRelPath(relPath)
		h = sha256.Sum256([]byte(norm + "\x00" + contentHash))
	}
	return hex.EncodeToString(h[:16])
}

// NormalizeRelPath converts relPath to slash-separated form with no leading
// "./" segment.
func NormalizeRelPath(relPath string) string {
	norm := filepath.ToSlash(relPath)
	return strings.TrimPrefix(norm, "./")
}
