package accounts

import (
	"bufio"
	"fmt"
	"io"
	"regexp"

	"github.com/cleared-dev/sebimport/internal/model"
)

var openLine = regexp.MustCompile(`^\s*\d{4}-\d{2}-\d{2}\s+open\s+([A-Z][A-Za-z0-9:_-]+)`)

// ReadDeclared returns the accounts that have an open directive in r.
func ReadDeclared(r io.Reader) ([]model.Account, error) {
	var accounts []model.Account
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if m := openLine.FindStringSubmatch(sc.Text()); m != nil {
			accounts = append(accounts, model.Account(m[1]))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading open directives: %w", err)
	}
	return accounts, nil
}
