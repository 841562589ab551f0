package accounts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/cleared-dev/sebimport/internal/model"
)

// Service provides in-memory lookup over declared accounts.
type Service struct {
	declared map[model.Account]bool
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	declared := make(map[model.Account]bool, len(accounts))
	for _, a := range accounts {
		declared[a] = true
	}
	return &Service{declared: declared}
}

// Load reads open directives from each ledger file. Missing files are
// treated as declaring nothing.
func Load(paths ...string) (*Service, error) {
	var all []model.Account
	for _, path := range paths {
		accts, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, accts...)
	}
	return NewService(all), nil
}

func loadFile(path string) ([]model.Account, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	accts, err := ReadDeclared(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return accts, nil
}

// Declared reports whether account has an open directive.
func (s *Service) Declared(account model.Account) bool {
	return s.declared[account]
}

// Add marks accounts as declared.
func (s *Service) Add(accounts ...model.Account) {
	for _, a := range accounts {
		s.declared[a] = true
	}
}

// Len returns the number of declared accounts.
func (s *Service) Len() int { return len(s.declared) }

// All returns declared accounts sorted by name.
func (s *Service) All() []model.Account {
	out := make([]model.Account, 0, len(s.declared))
	for a := range s.declared {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ByRoot returns declared accounts under the given root category.
func (s *Service) ByRoot(root string) []model.Account {
	var result []model.Account
	for _, a := range s.All() {
		if a.Root() == root {
			result = append(result, a)
		}
	}
	return result
}
