package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/sebimport/internal/model"
)

func TestAppend_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger", "transactions.beancount")
	svc := NewService(path)

	tx := txn(date(2024, 1, 5), "Assets:SEB:2010", "Expenses:Unknown", "-4.00")
	tx.AddLink("seb-1")
	require.NoError(t, svc.Append([]model.Entry{tx}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "2024-01-05 * "))

	links, err := svc.Links()
	require.NoError(t, err)
	assert.True(t, links["seb-1"])
}

func TestAppend_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.beancount")
	svc := NewService(path)

	first := txn(date(2024, 1, 5), "Assets:SEB:2010", "Expenses:Unknown", "-4.00")
	first.AddLink("seb-1")
	second := txn(date(2024, 1, 6), "Assets:SEB:2010", "Expenses:Unknown", "-5.00")
	second.AddLink("seb-2")

	require.NoError(t, svc.Append([]model.Entry{first}))
	require.NoError(t, svc.Append([]model.Entry{second}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), " * "))
	assert.Contains(t, string(data), "EUR\n\n2024-01-06")

	links, err := svc.Links()
	require.NoError(t, err)
	assert.Len(t, links, 2)
}

func TestAppend_ValidationFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.beancount")
	svc := NewService(path)

	bad := txn(date(2024, 1, 5), "Assets:SEB:2010", "Expenses:Unknown", "-4.00")
	bad.Postings[1].Units = eur("3.00")

	err := svc.Append([]model.Entry{bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing should be written")
}

func TestAppend_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.beancount")
	require.NoError(t, NewService(path).Append(nil))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLinks_MissingLedger(t *testing.T) {
	links, err := NewService(filepath.Join(t.TempDir(), "none.beancount")).Links()
	require.NoError(t, err)
	assert.Empty(t, links)
}
