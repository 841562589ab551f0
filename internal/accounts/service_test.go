package accounts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/sebimport/internal/model"
)

func TestNewService(t *testing.T) {
	svc := NewService([]model.Account{"Income:Salary", "Assets:SEB:2010", "Assets:SEB:2010"})
	assert.Equal(t, 2, svc.Len())
	assert.Equal(t, []model.Account{"Assets:SEB:2010", "Income:Salary"}, svc.All())
}

func TestDeclared(t *testing.T) {
	svc := NewService([]model.Account{"Assets:SEB:2010"})
	assert.True(t, svc.Declared("Assets:SEB:2010"))
	assert.False(t, svc.Declared("Assets:SEB:9999"))

	svc.Add("Assets:SEB:9999")
	assert.True(t, svc.Declared("Assets:SEB:9999"))
}

func TestByRoot(t *testing.T) {
	svc := NewService([]model.Account{"Expenses:Unknown", "Assets:SEB:2010", "Expenses:Clothing"})
	assert.Equal(t, []model.Account{"Expenses:Clothing", "Expenses:Unknown"}, svc.ByRoot(model.RootExpenses))
	assert.Empty(t, svc.ByRoot(model.RootEquity))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "accounts.beancount")
	b := filepath.Join(dir, "transactions.beancount")
	require.NoError(t, os.WriteFile(a, []byte("1900-01-01 open Assets:SEB:2010 EUR\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("2024-01-05 open Expenses:Unknown EUR\n"), 0o644))

	svc, err := Load(a, b, filepath.Join(dir, "missing.beancount"))
	require.NoError(t, err)
	assert.Equal(t, 2, svc.Len())
	assert.True(t, svc.Declared("Expenses:Unknown"))
}

func TestLoadFromTestdata(t *testing.T) {
	svc, err := Load("../../testdata/accounts.beancount")
	require.NoError(t, err)
	assert.True(t, svc.Declared("Assets:SEB:2010"))
	assert.True(t, svc.Declared("Equity:Opening-Balances"))
}
