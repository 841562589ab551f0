// Package classify maps bank transaction metadata onto counterparty
// accounts using a fixed, ordered list of keyword rules.
package classify

import (
	"strings"

	"github.com/cleared-dev/sebimport/internal/model"
)

// Input holds the transaction fields the rules look at.
type Input struct {
	Payee               string
	Explanation         string
	Type                string // bank transaction type code, e.g. "MK", "L"
	DebitCredit         string // "D" or "C"
	CounterpartyAccount string
}

// Fields is a normalized Input as seen by rule predicates.
type Fields struct {
	Payee               string // trimmed, original case
	PayeeLower          string
	Explanation         string // trimmed, lower-cased
	Type                string // upper-cased
	DebitCredit         string // upper-cased
	CounterpartyAccount string // upper-cased
	BankName            string // lower-cased bank-name tag
}

// Debit reports whether money left the account.
func (f Fields) Debit() bool { return f.DebitCredit == "D" }

// Rule pairs a predicate with the account it produces.
type Rule struct {
	Name  string
	Match func(f Fields) bool
	Label func(f Fields) model.Account
}

// Fixed returns a label function that ignores its input.
func Fixed(account model.Account) func(Fields) model.Account {
	return func(Fields) model.Account { return account }
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithOverrides registers bank-specific rules consulted before the generic ones.
func WithOverrides(rules ...Rule) Option {
	return func(m *Mapper) {
		m.overrides = append(m.overrides, rules...)
	}
}

// Mapper classifies transactions. It is immutable after New and safe for
// concurrent use.
type Mapper struct {
	bankName  string
	overrides []Rule
	rules     []Rule
}

// New creates a Mapper for bankName, the tag used to recognize fees the bank
// charges itself.
func New(bankName string, opts ...Option) *Mapper {
	m := &Mapper{
		bankName: strings.ToLower(strings.TrimSpace(bankName)),
		rules:    DefaultRules(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Classify returns the counterparty account for in. It always returns a label.
func (m *Mapper) Classify(in Input) model.Account {
	account, _ := m.Explain(in)
	return account
}

// Explain is like Classify and also returns the name of the winning rule.
func (m *Mapper) Explain(in Input) (model.Account, string) {
	f := m.normalize(in)
	for _, r := range m.overrides {
		if r.Match(f) {
			return r.Label(f), r.Name
		}
	}
	for _, r := range m.rules {
		if r.Match(f) {
			return r.Label(f), r.Name
		}
	}
	return defaultAccount(f), RuleDefault
}

func (m *Mapper) normalize(in Input) Fields {
	payee := strings.TrimSpace(in.Payee)
	return Fields{
		Payee:               payee,
		PayeeLower:          strings.ToLower(payee),
		Explanation:         strings.ToLower(strings.TrimSpace(in.Explanation)),
		Type:                strings.ToUpper(strings.TrimSpace(in.Type)),
		DebitCredit:         strings.ToUpper(strings.TrimSpace(in.DebitCredit)),
		CounterpartyAccount: strings.ToUpper(strings.TrimSpace(in.CounterpartyAccount)),
		BankName:            m.bankName,
	}
}

// Classify is a convenience wrapper that builds a throwaway Mapper for bankName.
func Classify(payee, explanation, txnType, debitCredit, counterpartyAccount, bankName string) string {
	return string(New(bankName).Classify(Input{
		Payee:               payee,
		Explanation:         explanation,
		Type:                txnType,
		DebitCredit:         debitCredit,
		CounterpartyAccount: counterpartyAccount,
	}))
}
