package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/sebimport/internal/model"
)

// Service appends imported entries to a Beancount ledger file.
type Service struct {
	path string
}

// NewService creates a ledger Service for the file at path.
func NewService(path string) *Service {
	return &Service{path: path}
}

// Path returns the ledger file path.
func (s *Service) Path() string { return s.path }

// Append validates the transactions among entries and appends all entries to
// the ledger, creating the file and its directory if needed.
func (s *Service) Append(entries []model.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	var txns []*model.Transaction
	for _, e := range entries {
		if txn, ok := e.(*model.Transaction); ok {
			txns = append(txns, txn)
		}
	}
	if verrs := ValidateTransactions(txns); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	isNew := false
	if info, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) || (err == nil && info.Size() == 0) {
		isNew = true
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if !isNew {
		if _, err := fmt.Fprintln(f); err != nil {
			return fmt.Errorf("writing separator: %w", err)
		}
	}
	if err := WriteEntries(f, entries); err != nil {
		return fmt.Errorf("appending entries: %w", err)
	}
	return nil
}

// Links returns the links already recorded in the ledger. A missing ledger
// has no links.
func (s *Service) Links() (map[string]bool, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", s.path, err)
	}
	defer f.Close()

	links, err := ReadLinks(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", s.path, err)
	}
	return links, nil
}
