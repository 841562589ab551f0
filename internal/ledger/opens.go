package ledger

import "github.com/cleared-dev/sebimport/internal/model"

// Checker reports whether an account already has an open directive.
type Checker interface {
	Declared(account model.Account) bool
}

// SynthesizeOpens returns one open directive per distinct posting account,
// dated to the first transaction using it and carrying that posting's
// currency. Order is first appearance in txns, not date order, so an
// unsorted file can yield an open dated after an earlier use. Accounts
// declared reports as known are skipped; declared may be nil.
func SynthesizeOpens(txns []*model.Transaction, declared Checker) []*model.Open {
	seen := make(map[model.Account]bool)
	var opens []*model.Open
	for _, txn := range txns {
		for _, p := range txn.Postings {
			if seen[p.Account] {
				continue
			}
			seen[p.Account] = true
			if declared != nil && declared.Declared(p.Account) {
				continue
			}
			opens = append(opens, &model.Open{
				Date:       txn.Date,
				Account:    p.Account,
				Currencies: []string{p.Units.Currency},
				Source:     model.SourceRef{File: txn.Source.File, Line: 1},
			})
		}
	}
	return opens
}
