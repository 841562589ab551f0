package model

import "strings"

// Account is a colon-delimited Beancount account label, e.g. "Expenses:Food:Groceries".
type Account string

// Root categories of the account namespace.
const (
	RootAssets      = "Assets"
	RootLiabilities = "Liabilities"
	RootIncome      = "Income"
	RootExpenses    = "Expenses"
	RootEquity      = "Equity"
)

// RootCategories lists the root categories in ledger display order.
var RootCategories = []string{RootAssets, RootLiabilities, RootIncome, RootExpenses, RootEquity}

// Root returns the first segment of the label.
// "Expenses:Food:Groceries" -> "Expenses"
func (a Account) Root() string {
	s := string(a)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[:i]
	}
	return s
}

// Join appends segments to the label.
func (a Account) Join(segments ...string) Account {
	parts := append([]string{string(a)}, segments...)
	return Account(strings.Join(parts, ":"))
}

// Valid reports whether the label starts with a known root category, has no
// empty segments and only contains [A-Za-z0-9:_-].
func (a Account) Valid() bool {
	s := string(a)
	if s == "" {
		return false
	}
	if !IsRootCategory(a.Root()) {
		return false
	}
	for _, seg := range strings.Split(s, ":") {
		if seg == "" {
			return false
		}
	}
	for _, r := range s {
		if !isAccountRune(r) {
			return false
		}
	}
	return true
}

// IsRootCategory reports whether name is one of RootCategories.
func IsRootCategory(name string) bool {
	for _, c := range RootCategories {
		if c == name {
			return true
		}
	}
	return false
}

func isAccountRune(r rune) bool {
	return r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' ||
		r == ':' || r == '_' || r == '-'
}
