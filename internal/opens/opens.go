// Package opens generates Beancount open directives for accounts used in a
// ledger but never declared.
package opens

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cleared-dev/sebimport/internal/ledger"
	"github.com/cleared-dev/sebimport/internal/model"
)

// DefaultDate is the open date used when none is given.
const DefaultDate = "1900-01-01"

// DateLayout is the accepted --open-date format.
const DateLayout = "2006-01-02"

const preferredCurrency = model.DefaultCurrency

var postingLine = regexp.MustCompile(`^\s+([A-Z][A-Za-z0-9:_-]+)\s+[+-]?[\d,]+\.?\d*\s+([A-Z]{3})`)

// Usage maps each account seen in postings to the currencies it was used with.
type Usage map[model.Account]map[string]bool

// Add records one posting.
func (u Usage) Add(account model.Account, currency string) {
	if u[account] == nil {
		u[account] = make(map[string]bool)
	}
	u[account][currency] = true
}

// Currency returns EUR when the account used it, otherwise the
// alphabetically first currency.
func (u Usage) Currency(account model.Account) string {
	set := u[account]
	if set[preferredCurrency] {
		return preferredCurrency
	}
	currencies := make([]string, 0, len(set))
	for c := range set {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	if len(currencies) == 0 {
		return preferredCurrency
	}
	return currencies[0]
}

// ExtractAccounts scans posting lines in r. Comment and blank lines are skipped.
func ExtractAccounts(r io.Reader) (Usage, error) {
	usage := make(Usage)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			continue
		}
		if m := postingLine.FindStringSubmatch(line); m != nil {
			usage.Add(model.Account(m[1]), m[2])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning postings: %w", err)
	}
	return usage, nil
}

// ValidateDate checks an --open-date value.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("invalid open date %q, want YYYY-MM-DD: %w", date, err)
	}
	return nil
}

// Generate returns open directive lines for every used account existing
// does not declare, grouped by root category under ";; <Root> accounts"
// headings with a blank line between groups. existing may be nil.
func Generate(usage Usage, existing ledger.Checker, date string) []string {
	groups := make(map[string][]model.Account)
	for account := range usage {
		if existing != nil && existing.Declared(account) {
			continue
		}
		root := account.Root()
		groups[root] = append(groups[root], account)
	}

	var lines []string
	for _, root := range orderedRoots(groups) {
		accts := groups[root]
		sort.Slice(accts, func(i, j int) bool { return accts[i] < accts[j] })

		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, fmt.Sprintf(";; %s accounts", root))
		for _, a := range accts {
			lines = append(lines, fmt.Sprintf("%s open %-35s %s", date, a, usage.Currency(a)))
		}
	}
	return lines
}

// orderedRoots lists the standard roots first, then the rest alphabetically.
func orderedRoots(groups map[string][]model.Account) []string {
	var roots []string
	known := make(map[string]bool, len(model.RootCategories))
	for _, r := range model.RootCategories {
		known[r] = true
		if len(groups[r]) > 0 {
			roots = append(roots, r)
		}
	}
	var others []string
	for r := range groups {
		if !known[r] {
			others = append(others, r)
		}
	}
	sort.Strings(others)
	return append(roots, others...)
}

// Count returns the number of directive lines, skipping headings and blanks.
func Count(lines []string) int {
	n := 0
	for _, l := range lines {
		if l != "" && !strings.HasPrefix(l, ";") {
			n++
		}
	}
	return n
}

// Render prefixes lines with a header naming the input file and the
// generation time, and terminates the text with a newline.
func Render(input string, lines []string, now time.Time) string {
	header := []string{
		";; Account opening directives",
		";; Generated from: " + input,
		";; Generated on: " + now.Format(time.RFC3339),
		"",
	}
	return strings.Join(append(header, lines...), "\n") + "\n"
}

// WriteFile writes text to path, replacing it or, with appendMode, adding a
// blank separator line and the text to the end.
func WriteFile(path, text string, appendMode bool) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		text = "\n" + text
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
