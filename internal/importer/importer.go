package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cleared-dev/sebimport/internal/model"
)

// Importer converts a bank statement into ledger entries.
type Importer interface {
	Format() string
	Identify(r io.Reader) bool
	FileName(path string) string
	Account(r io.Reader) model.Account
	LastDate(r io.Reader) (time.Time, bool)
	Extract(r io.Reader, name string) (*Result, error)
}

// Result is the outcome of extracting one statement.
type Result struct {
	File         string
	Opens        []*model.Open
	Transactions []*model.Transaction
	Skipped      int // rows rejected with a report, bad date or amount
	Blank        int // rows with no fields or no date, dropped silently
	Duplicates   int // rows whose link is already in the ledger
}

// Entries returns the open directives followed by the transactions in file order.
func (r *Result) Entries() []model.Entry {
	entries := make([]model.Entry, 0, len(r.Opens)+len(r.Transactions))
	for _, o := range r.Opens {
		entries = append(entries, o)
	}
	for _, t := range r.Transactions {
		entries = append(entries, t)
	}
	return entries
}

// Registry holds named importers.
type Registry struct {
	importers map[string]Importer
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty importer registry.
func NewRegistry() *Registry {
	return &Registry{importers: make(map[string]Importer)}
}

// Register adds an importer. Panics on duplicate format.
func (r *Registry) Register(imp Importer) {
	key := strings.ToLower(imp.Format())
	if _, ok := r.importers[key]; ok {
		panic("duplicate importer format: " + key)
	}
	r.importers[key] = imp
}

// Get returns the importer for format, or nil.
func (r *Registry) Get(format string) Importer {
	return r.importers[strings.ToLower(format)]
}

// Formats returns registered format names in sorted order.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.importers))
	for f := range r.importers {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// Identify returns the first importer (by format name) that accepts the file,
// or nil when none does.
func (r *Registry) Identify(path string) (Importer, error) {
	for _, format := range r.Formats() {
		imp := r.importers[format]
		ok, err := identifyFile(imp, path)
		if err != nil {
			return nil, err
		}
		if ok {
			return imp, nil
		}
	}
	return nil, nil
}

func identifyFile(imp Importer, path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return imp.Identify(f), nil
}

// DefaultRegistry returns a registry with the SEB importer built from opts.
func DefaultRegistry(prefix model.Account, opts ...Option) *Registry {
	r := NewRegistry()
	r.Register(NewSEBParser(prefix, opts...))
	return r
}

// ExtractFile opens path and extracts it with imp.
func ExtractFile(imp Importer, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return imp.Extract(f, filepath.Base(path))
}

// importDir is the subdirectory for import CSVs.
const importDir = "import"

// processedDir is the subdirectory for processed CSVs.
const processedDir = "import/processed"

// Scan returns CSV files in <repoRoot>/import/.
func Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/ under newName.
func MarkProcessed(repoRoot, fileName, newName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	if newName == "" {
		newName = fileName
	}
	dst := filepath.Join(dstDir, newName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
