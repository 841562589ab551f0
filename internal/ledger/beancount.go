package ledger

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/cleared-dev/sebimport/internal/model"
)

const (
	dateFormat   = "2006-01-02"
	accountWidth = 38
	numberWidth  = 10
	minDecimals  = 2
)

// MarshalTransaction renders a transaction as Beancount text.
func MarshalTransaction(txn *model.Transaction) string {
	var b strings.Builder

	flag := txn.Flag
	if flag == "" {
		flag = model.FlagOkay
	}
	b.WriteString(txn.Date.Format(dateFormat))
	b.WriteString(" ")
	b.WriteString(flag)
	if txn.Payee != "" {
		b.WriteString(" ")
		b.WriteString(quote(txn.Payee))
	}
	b.WriteString(" ")
	b.WriteString(quote(txn.Narration))
	for _, link := range txn.Links {
		b.WriteString(" ^")
		b.WriteString(link)
	}
	b.WriteString("\n")

	if txn.Rule != "" {
		fmt.Fprintf(&b, "  rule: %s\n", quote(txn.Rule))
	}
	for _, p := range txn.Postings {
		b.WriteString(MarshalPosting(p))
		b.WriteString("\n")
	}
	return b.String()
}

// MarshalPosting renders one indented posting line. Numbers carry at least
// two decimals and never lose precision.
func MarshalPosting(p model.Posting) string {
	places := max(minDecimals, -p.Units.Number.Exponent())
	return fmt.Sprintf("  %-*s %*s %s", accountWidth, p.Account, numberWidth, p.Units.Number.StringFixed(places), p.Units.Currency)
}

// MarshalOpen renders an open directive.
func MarshalOpen(o *model.Open) string {
	line := o.Date.Format(dateFormat) + " open " + string(o.Account)
	if len(o.Currencies) > 0 {
		line += " " + strings.Join(o.Currencies, ",")
	}
	return line + "\n"
}

// WriteEntries writes entries separated by blank lines.
func WriteEntries(w io.Writer, entries []model.Entry) error {
	bw := bufio.NewWriter(w)
	for i, e := range entries {
		var text string
		switch e := e.(type) {
		case *model.Open:
			text = MarshalOpen(e)
		case *model.Transaction:
			text = MarshalTransaction(e)
		default:
			return fmt.Errorf("entry %d: unsupported type %T", i, e)
		}

		// Consecutive opens stay in one block.
		if i > 0 {
			_, prevOpen := entries[i-1].(*model.Open)
			_, isOpen := e.(*model.Open)
			if !prevOpen || !isOpen {
				if _, err := bw.WriteString("\n"); err != nil {
					return fmt.Errorf("writing entry %d: %w", i, err)
				}
			}
		}
		if _, err := bw.WriteString(text); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	return bw.Flush()
}

var linkToken = regexp.MustCompile(`\s\^([A-Za-z0-9\-_/.]+)`)

// ReadLinks returns every ^link found on transaction header lines.
func ReadLinks(r io.Reader) (map[string]bool, error) {
	links := make(map[string]bool)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || line[0] < '0' || line[0] > '9' {
			continue
		}
		for _, m := range linkToken.FindAllStringSubmatch(line, -1) {
			links[m[1]] = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	return links, nil
}

// quote returns s as a Beancount string literal.
func quote(s string) string {
	return strconv.Quote(s)
}
