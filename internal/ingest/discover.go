package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// DiscoveredFile is one candidate PDF found under the watched folder. Err is
// set when the file could not be read or is not a structurally valid PDF; the
// reconciler records such files as failed without touching any remote state.
type DiscoveredFile struct {
	AbsPath   string
	RelPath   string
	SizeBytes int64
	PageCount int
	Err       string
}

// PageCounter reports the number of pages in a PDF. The production counter is
// pdfcpu; tests substitute a stub so fixtures need not be real PDFs.
type PageCounter func(absPath string) (int, error)

// PDFPageCount is the production PageCounter.
func PDFPageCount(absPath string) (int, error) {
	return api.PageCountFile(absPath)
}

// Discover walks folder recursively and returns every *.pdf (case
// insensitive) in lexical rel-path order. Unreadable or invalid entries are
// returned with Err set rather than dropped, so each gets a visible outcome.
func Discover(folder string, pages PageCounter) ([]DiscoveredFile, error) {
	root, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("resolve folder: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", folder)
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".pdf") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		df := DiscoveredFile{AbsPath: path, RelPath: NormalizeRelPath(rel)}
		if fi, err := d.Info(); err == nil {
			df.SizeBytes = fi.Size()
		}
		if n, err := pages(path); err != nil {
			df.Err = fmt.Sprintf("invalid pdf: %v", err)
		} else {
			df.PageCount = n
		}
		files = append(files, df)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", folder, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}
