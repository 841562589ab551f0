package ledger

import (
	"fmt"

	"github.com/cleared-dev/sebimport/internal/model"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	Entry       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.Entry, e.Description)
}

// ValidateTransactions enforces 4 invariants on imported transactions:
//  1. exactly two postings
//  2. postings share one currency
//  3. postings sum to zero
//  4. account labels are well formed
func ValidateTransactions(txns []*model.Transaction) []ValidationError {
	var errs []ValidationError

	for i, txn := range txns {
		ref := entryRef(i, txn)

		if len(txn.Postings) != 2 {
			errs = append(errs, ValidationError{
				Invariant:   1,
				Entry:       ref,
				Description: fmt.Sprintf("expected 2 postings, got %d", len(txn.Postings)),
			})
		}

		sums := txn.Balance()
		if len(sums) > 1 {
			errs = append(errs, ValidationError{
				Invariant:   2,
				Entry:       ref,
				Description: fmt.Sprintf("postings use %d currencies", len(sums)),
			})
		}
		for currency, sum := range sums {
			if !sum.IsZero() {
				errs = append(errs, ValidationError{
					Invariant:   3,
					Entry:       ref,
					Description: fmt.Sprintf("postings sum to %s %s", sum.StringFixed(2), currency),
				})
			}
		}

		for _, p := range txn.Postings {
			if !p.Account.Valid() {
				errs = append(errs, ValidationError{
					Invariant:   4,
					Entry:       ref,
					Description: fmt.Sprintf("invalid account %q", p.Account),
				})
			}
		}
	}
	return errs
}

func entryRef(i int, txn *model.Transaction) string {
	if txn.Source.File != "" {
		return fmt.Sprintf("%s:%d", txn.Source.File, txn.Source.Line)
	}
	return fmt.Sprintf("%s #%d", txn.Date.Format(dateFormat), i)
}
