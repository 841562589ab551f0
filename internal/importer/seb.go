package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/cleared-dev/sebimport/internal/classify"
	"github.com/cleared-dev/sebimport/internal/id"
	"github.com/cleared-dev/sebimport/internal/ledger"
	"github.com/cleared-dev/sebimport/internal/logger"
	"github.com/cleared-dev/sebimport/internal/model"
)

// SEB kontovv column names.
const (
	colAccount      = "Kliendi konto"
	colDocument     = "Dokumendi number"
	colDate         = "Kuupäev"
	colCounterparty = "Saaja/maksja konto"
	colPayee        = "Saaja/maksja nimi"
	colDebitCredit  = "Deebet/Kreedit (D/C)"
	colAmount       = "Summa"
	colArchive      = "Arhiveerimistunnus"
	colExplanation  = "Selgitus"
	colCurrency     = "Valuuta"
	colType         = "Tüüp"
)

const (
	sebFormat      = "seb"
	sebBankName    = "SEB"
	sebDateFormat  = "02.01.2006"
	sebHeaderStart = colAccount + ";" + colDocument
	sebNarration   = "SEB Transaction"
	identifyBytes  = 256
	accountSuffix  = 4
)

// Transaction types that add nothing to the narration.
var quietTypes = map[string]bool{"MK": true, "H": true}

// SEBParser imports SEB Estonia CSV account statements.
type SEBParser struct {
	prefix      model.Account
	bankName    string
	createOpens bool
	explain     bool
	ownNames    []string
	declared    ledger.Checker
	existing    map[string]bool
	reporter    logger.Reporter
	mapper      *classify.Mapper
}

// Option configures a SEBParser.
type Option func(*SEBParser)

// WithBankName sets the bank-name tag used to recognize bank fees.
func WithBankName(name string) Option {
	return func(p *SEBParser) { p.bankName = name }
}

// WithCreateOpens controls whether Extract emits open directives.
func WithCreateOpens(create bool) Option {
	return func(p *SEBParser) { p.createOpens = create }
}

// WithDeclared skips open directives for accounts the checker knows.
func WithDeclared(c ledger.Checker) Option {
	return func(p *SEBParser) { p.declared = c }
}

// WithExisting drops transactions whose link is already in links.
func WithExisting(links map[string]bool) Option {
	return func(p *SEBParser) { p.existing = links }
}

// WithReporter sets the collaborator told about skipped rows.
func WithReporter(r logger.Reporter) Option {
	return func(p *SEBParser) { p.reporter = r }
}

// WithOwnTransfers routes transfers to or from the named people to
// Assets:Transfers.
func WithOwnTransfers(names ...string) Option {
	return func(p *SEBParser) { p.ownNames = append(p.ownNames, names...) }
}

// WithExplain records the winning classification rule on each transaction.
func WithExplain(explain bool) Option {
	return func(p *SEBParser) { p.explain = explain }
}

// NewSEBParser creates a parser whose primary accounts live under prefix,
// e.g. "Assets:SEB".
func NewSEBParser(prefix model.Account, opts ...Option) *SEBParser {
	p := &SEBParser{
		prefix:      prefix,
		bankName:    sebBankName,
		createOpens: true,
		reporter:    logger.Discard,
	}
	for _, opt := range opts {
		opt(p)
	}

	var mapperOpts []classify.Option
	if len(p.ownNames) > 0 {
		mapperOpts = append(mapperOpts, classify.WithOverrides(
			classify.TransferOverride(classify.AccountTransfers, p.ownNames...)))
	}
	p.mapper = classify.New(p.bankName, mapperOpts...)
	return p
}

// Format returns the parser name.
func (p *SEBParser) Format() string { return sebFormat }

// Identify reports whether r starts with an SEB statement header.
func (p *SEBParser) Identify(r io.Reader) bool {
	head := make([]byte, identifyBytes)
	n, err := io.ReadFull(decode(r), head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false
	}
	text := strings.ReplaceAll(string(head[:n]), `"`, "")
	return strings.HasPrefix(text, sebHeaderStart)
}

// FileName returns the archive name for an imported statement.
func (p *SEBParser) FileName(path string) string {
	return sebFormat + "." + filepath.Base(path)
}

// Account returns the primary account of the first row, or the prefix when
// the statement has no account number.
func (p *SEBParser) Account(r io.Reader) model.Account {
	rr, err := newRowReader(r)
	if err != nil {
		return p.prefix
	}
	row, _, err := rr.next()
	if err != nil {
		return p.prefix
	}
	return p.mainAccount(row.get(colAccount))
}

// LastDate returns the latest valid transaction date in the statement.
func (p *SEBParser) LastDate(r io.Reader) (time.Time, bool) {
	rr, err := newRowReader(r)
	if err != nil {
		return time.Time{}, false
	}
	var last time.Time
	for {
		row, _, err := rr.next()
		if err != nil {
			break
		}
		d, err := time.Parse(sebDateFormat, row.get(colDate))
		if err != nil {
			continue
		}
		if d.After(last) {
			last = d
		}
	}
	return last, !last.IsZero()
}

// Extract builds transactions from a statement, preceded by open directives
// for every account first seen in it when opens are enabled. Bad rows are
// reported and skipped; an unreadable statement is an error.
func (p *SEBParser) Extract(r io.Reader, name string) (*Result, error) {
	rr, err := newRowReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	res := &Result{File: name}
	for {
		row, line, err := rr.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}

		if row.empty() || row.get(colDate) == "" {
			res.Blank++
			continue
		}
		txn, ok := p.buildTransaction(row, name, line)
		if !ok {
			res.Skipped++
			continue
		}
		if p.isDuplicate(txn) {
			res.Duplicates++
			continue
		}
		res.Transactions = append(res.Transactions, txn)
	}

	if p.createOpens {
		res.Opens = ledger.SynthesizeOpens(res.Transactions, p.declared)
	}
	return res, nil
}

func (p *SEBParser) buildTransaction(row record, file string, line int) (*model.Transaction, bool) {
	dateStr := row.get(colDate)
	date, err := time.Parse(sebDateFormat, dateStr)
	if err != nil {
		p.reporter.SkipRow(file, line, fmt.Sprintf("invalid date format: %s", dateStr), err)
		return nil, false
	}

	debitCredit := row.get(colDebitCredit)
	amountStr := strings.ReplaceAll(row.get(colAmount), ",", ".")
	number, err := decimal.NewFromString(amountStr)
	if err != nil {
		p.reporter.SkipRow(file, line, fmt.Sprintf("invalid amount: %s", amountStr), err)
		return nil, false
	}
	if strings.EqualFold(debitCredit, "D") {
		number = number.Neg()
	}

	currency := row.get(colCurrency)
	if currency == "" {
		currency = model.DefaultCurrency
	}
	units := model.Amount{Number: number, Currency: currency}

	payee := row.get(colPayee)
	explanation := row.get(colExplanation)
	txnType := row.get(colType)

	counterparty, rule := p.mapper.Explain(classify.Input{
		Payee:               payee,
		Explanation:         explanation,
		Type:                txnType,
		DebitCredit:         debitCredit,
		CounterpartyAccount: row.get(colCounterparty),
	})

	txn := &model.Transaction{
		Date:      date,
		Flag:      model.FlagOkay,
		Payee:     payee,
		Narration: narration(explanation, txnType),
		Postings: []model.Posting{
			{Account: p.mainAccount(row.get(colAccount)), Units: units},
			{Account: counterparty, Units: units.Neg()},
		},
		Source: model.SourceRef{File: file, Line: line},
	}
	txn.AddLink(id.FormatLink(p.bankName, row.get(colArchive)))
	if p.explain {
		txn.Rule = rule
	}
	return txn, true
}

func (p *SEBParser) isDuplicate(txn *model.Transaction) bool {
	for _, link := range txn.Links {
		if p.existing[link] {
			return true
		}
	}
	return false
}

// mainAccount suffixes the last four characters of the account number onto
// the prefix.
func (p *SEBParser) mainAccount(number string) model.Account {
	if number == "" {
		return p.prefix
	}
	if len(number) > accountSuffix {
		number = number[len(number)-accountSuffix:]
	}
	return p.prefix.Join(number)
}

func narration(explanation, txnType string) string {
	var parts []string
	if explanation != "" {
		parts = append(parts, explanation)
	}
	if txnType != "" && !quietTypes[txnType] {
		parts = append(parts, "("+txnType+")")
	}
	if len(parts) == 0 {
		return sebNarration
	}
	return strings.Join(parts, " | ")
}

// decode strips a UTF-8 byte-order mark and switches to UTF-16 when the
// statement carries a UTF-16 BOM.
func decode(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// record is one data row keyed by header name.
type record map[string]string

func (r record) get(col string) string { return r[col] }

func (r record) empty() bool {
	for _, v := range r {
		if v != "" {
			return false
		}
	}
	return true
}

type rowReader struct {
	cr     *csv.Reader
	header []string
}

func newRowReader(r io.Reader) (*rowReader, error) {
	cr := csv.NewReader(bufio.NewReader(decode(r)))
	cr.Comma = ';'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &rowReader{cr: cr}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = clean(header[i])
	}
	return &rowReader{cr: cr, header: header}, nil
}

// next returns the next row and its line number.
func (rr *rowReader) next() (record, int, error) {
	if rr.header == nil {
		return nil, 0, io.EOF
	}
	fields, err := rr.cr.Read()
	if err != nil {
		return nil, 0, err
	}
	line, _ := rr.cr.FieldPos(0)
	row := make(record, len(rr.header))
	for i, col := range rr.header {
		if i < len(fields) {
			row[col] = clean(fields[i])
		} else {
			row[col] = ""
		}
	}
	return row, line, nil
}

func clean(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}
