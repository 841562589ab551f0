package classify

import (
	"regexp"
	"strings"

	"github.com/cleared-dev/sebimport/internal/model"
)

// Rule names, in priority order.
const (
	RuleBankFee          = "bank-fee"
	RuleInterestIncome   = "interest-income"
	RuleCard             = "card"
	RuleSalary           = "salary"
	RuleUtilities        = "utilities"
	RuleInsurance        = "insurance"
	RuleLoan             = "loan"
	RuleDonation         = "donation"
	RuleExternalTransfer = "external-transfer"
	RuleDefault          = "default"
)

const (
	interestPayout = "intresside väljamaks"
	cardMarker     = "kaart"
	loanMarker     = "lep."
	loanType       = "L"
	estonianIBAN   = "EE"
)

var (
	feeKeywords       = []string{"teenustasu", "intressi tulumaks"}
	salaryKeywords    = []string{"puhkusetasu", "palk", "töötasu"}
	utilityKeywords   = []string{"eesti energia", "telia", "elion"}
	insuranceKeywords = []string{"kindlustus", "poliis"}
	donationKeywords  = []string{"annetus", "annetamine"}
)

// KeywordGroup maps any of its keywords to an account.
type KeywordGroup struct {
	Keywords []string
	Account  model.Account
}

// CardGroups sub-classify card purchases; the first group with a keyword in
// the explanation wins.
var CardGroups = []KeywordGroup{
	{Keywords: []string{"selver", "kiosk", "rimi", "maxima"}, Account: "Expenses:Food:Groceries"},
	{Keywords: []string{"circle k", "neste", "alexela"}, Account: "Expenses:Transportation:Fuel"},
	{Keywords: []string{"takko", "h&m", "reserved"}, Account: "Expenses:Clothing"},
	{Keywords: []string{"netflix", "apple", "spotify"}, Account: "Expenses:Entertainment:Subscriptions"},
	{Keywords: []string{"hotell", "hotel"}, Account: "Expenses:Travel:Accommodation"},
}

// Fallback accounts.
const (
	AccountBankFees       model.Account = "Expenses:Bank:Fees"
	AccountInterest       model.Account = "Income:Interest"
	AccountSalary         model.Account = "Income:Salary"
	AccountUtilities      model.Account = "Expenses:Utilities"
	AccountInsurance      model.Account = "Expenses:Insurance"
	AccountLoan           model.Account = "Liabilities:Loan"
	AccountCharity        model.Account = "Expenses:Charity"
	AccountUnknownExpense model.Account = "Expenses:Unknown"
	AccountUnknownIncome  model.Account = "Income:Unknown"
	AccountTransfers      model.Account = "Assets:Transfers"
)

// DefaultRules returns the generic rule list in priority order. Order matters:
// a donation keyword inside a card narration is still a card purchase.
func DefaultRules() []Rule {
	return []Rule{
		{Name: RuleBankFee, Match: isBankFee, Label: Fixed(AccountBankFees)},
		{Name: RuleInterestIncome, Match: isInterestIncome, Label: Fixed(AccountInterest)},
		{Name: RuleCard, Match: isCard, Label: cardAccount},
		{Name: RuleSalary, Match: explanationHasAny(salaryKeywords), Label: Fixed(AccountSalary)},
		{Name: RuleUtilities, Match: payeeHasAny(utilityKeywords), Label: Fixed(AccountUtilities)},
		{Name: RuleInsurance, Match: isInsurance, Label: Fixed(AccountInsurance)},
		{Name: RuleLoan, Match: isLoan, Label: Fixed(AccountLoan)},
		{Name: RuleDonation, Match: explanationHasAny(donationKeywords), Label: Fixed(AccountCharity)},
		{Name: RuleExternalTransfer, Match: IsExternalTransfer, Label: externalAccount},
	}
}

func isBankFee(f Fields) bool {
	fromBank := f.BankName != "" && f.PayeeLower == f.BankName
	return (fromBank || containsAny(f.Explanation, feeKeywords)) &&
		!strings.Contains(f.Explanation, interestPayout)
}

func isInterestIncome(f Fields) bool {
	return strings.Contains(f.Explanation, interestPayout)
}

func isCard(f Fields) bool {
	return strings.Contains(f.Explanation, cardMarker)
}

func cardAccount(f Fields) model.Account {
	for _, g := range CardGroups {
		if containsAny(f.Explanation, g.Keywords) {
			return g.Account
		}
	}
	return AccountUnknownExpense
}

func isInsurance(f Fields) bool {
	return containsAny(f.Explanation, insuranceKeywords) || containsAny(f.PayeeLower, insuranceKeywords)
}

func isLoan(f Fields) bool {
	return f.Type == loanType || strings.Contains(f.Explanation, loanMarker)
}

// IsExternalTransfer reports whether the counterparty holds an Estonian account.
func IsExternalTransfer(f Fields) bool {
	return strings.HasPrefix(f.CounterpartyAccount, estonianIBAN)
}

func externalAccount(f Fields) model.Account {
	root := model.Account(model.RootIncome)
	if f.Debit() {
		root = model.RootExpenses
	}
	return root.Join("External", CleanPayee(f.Payee))
}

func defaultAccount(f Fields) model.Account {
	if f.Debit() {
		return AccountUnknownExpense
	}
	return AccountUnknownIncome
}

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	nonAccountChar = regexp.MustCompile(`[^A-Z0-9-]`)
)

// CleanPayee turns a payee name into an account segment:
// "Jaan Tamm" -> "JAAN-TAMM". Empty results become "Unknown".
func CleanPayee(payee string) string {
	s := whitespaceRun.ReplaceAllString(strings.TrimSpace(payee), "-")
	s = nonAccountChar.ReplaceAllString(strings.ToUpper(s), "")
	if s == "" {
		return "Unknown"
	}
	return s
}

func explanationHasAny(keywords []string) func(Fields) bool {
	return func(f Fields) bool { return containsAny(f.Explanation, keywords) }
}

func payeeHasAny(keywords []string) func(Fields) bool {
	return func(f Fields) bool { return containsAny(f.PayeeLower, keywords) }
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// TransferOverride routes Estonian-account transfers whose payee contains one
// of names to account. Use it with WithOverrides for transfers between the
// account holder's own accounts.
func TransferOverride(account model.Account, names ...string) Rule {
	lower := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			lower = append(lower, n)
		}
	}
	return Rule{
		Name: "own-transfer",
		Match: func(f Fields) bool {
			return IsExternalTransfer(f) && containsAny(f.PayeeLower, lower)
		},
		Label: Fixed(account),
	}
}
