package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// FlagOkay marks a completed transaction.
const FlagOkay = "*"

// DefaultCurrency is used when a bank row carries no currency.
const DefaultCurrency = "EUR"

// Amount is a number in a single currency.
type Amount struct {
	Number   decimal.Decimal
	Currency string
}

// Neg returns the additive inverse of the amount.
func (a Amount) Neg() Amount {
	return Amount{Number: a.Number.Neg(), Currency: a.Currency}
}

// Posting is one leg of a transaction.
type Posting struct {
	Account Account
	Units   Amount
}

// SourceRef points back to the input row an entry was built from.
type SourceRef struct {
	File string
	Line int
}

// Entry is a dated ledger directive.
type Entry interface {
	EntryDate() time.Time
}

// Transaction is a balanced double-entry record.
type Transaction struct {
	Date      time.Time //nolint:revive // plain field name is clearest
	Flag      string
	Payee     string // empty = no payee
	Narration string
	Links     []string
	Postings  []Posting
	Rule      string // classification rule that chose the counterparty, if recorded
	Source    SourceRef
}

// EntryDate implements Entry.
func (t *Transaction) EntryDate() time.Time { return t.Date }

// AddLink adds a link identifier, keeping Links sorted and unique.
func (t *Transaction) AddLink(link string) {
	if link == "" {
		return
	}
	i := sort.SearchStrings(t.Links, link)
	if i < len(t.Links) && t.Links[i] == link {
		return
	}
	t.Links = append(t.Links, "")
	copy(t.Links[i+1:], t.Links[i:])
	t.Links[i] = link
}

// Balance returns the sum of posting amounts per currency.
func (t *Transaction) Balance() map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, p := range t.Postings {
		sums[p.Units.Currency] = sums[p.Units.Currency].Add(p.Units.Number)
	}
	return sums
}

// Open declares an account usable from Date on.
type Open struct {
	Date       time.Time //nolint:revive
	Account    Account
	Currencies []string
	Source     SourceRef
}

// EntryDate implements Entry.
func (o *Open) EntryDate() time.Time { return o.Date }
