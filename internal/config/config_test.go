package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Bank.OwnTransferNames = []string{"Jaan Tamm", "Mari Tamm"}
	cfg.Git.AutoCommit = false

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "SEB", cfg.Bank.Name)
	assert.Equal(t, "Assets:SEB", cfg.Bank.AccountPrefix)
	assert.True(t, cfg.Bank.CreateNewAccounts)
	assert.Empty(t, cfg.Bank.OwnTransferNames)
	assert.Equal(t, "ledger/transactions.beancount", cfg.Ledger.Path)
	assert.Equal(t, "ledger/accounts.beancount", cfg.Ledger.AccountsPath)
	assert.True(t, cfg.Git.AutoCommit)
	assert.NoError(t, Validate(cfg))
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("bank: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("bank:\n  account_prefix: Assets:Bank:SEB\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Assets:Bank:SEB", cfg.Bank.AccountPrefix)
	assert.Equal(t, "SEB", cfg.Bank.Name)
	assert.Equal(t, "ledger/transactions.beancount", cfg.Ledger.Path)
}

func TestSaveContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: SEB")
	assert.Contains(t, contents, "account_prefix: Assets:SEB")
	assert.Contains(t, contents, "create_new_accounts: true")
	assert.Contains(t, contents, "auto_commit: true")
	assert.NotContains(t, contents, "own_transfer_names")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SEBIMPORT_BANK_NAME", "Swedbank")
	t.Setenv("SEBIMPORT_BANK_ACCOUNT_PREFIX", "Assets:Swed")
	t.Setenv("SEBIMPORT_BANK_CREATE_NEW_ACCOUNTS", "false")
	t.Setenv("SEBIMPORT_BANK_OWN_TRANSFER_NAMES", "Jaan Tamm, Mari Tamm,")
	t.Setenv("SEBIMPORT_LEDGER_PATH", "main.beancount")
	t.Setenv("SEBIMPORT_GIT_AUTO_COMMIT", "0")

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))

	assert.Equal(t, "Swedbank", cfg.Bank.Name)
	assert.Equal(t, "Assets:Swed", cfg.Bank.AccountPrefix)
	assert.False(t, cfg.Bank.CreateNewAccounts)
	assert.Equal(t, []string{"Jaan Tamm", "Mari Tamm"}, cfg.Bank.OwnTransferNames)
	assert.Equal(t, "main.beancount", cfg.Ledger.Path)
	assert.Equal(t, "ledger/accounts.beancount", cfg.Ledger.AccountsPath)
	assert.False(t, cfg.Git.AutoCommit)
}

func TestApplyEnv_NoVariables(t *testing.T) {
	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv_BadBool(t *testing.T) {
	t.Setenv("SEBIMPORT_GIT_AUTO_COMMIT", "maybe")

	cfg := Default()
	err := ApplyEnv(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git.auto_commit")
	assert.True(t, cfg.Git.AutoCommit, "bad value leaves the setting alone")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
		tag    string
	}{
		{"empty bank name", func(c *Config) { c.Bank.Name = "" }, "bank.name", "required"},
		{"prefix without root", func(c *Config) { c.Bank.AccountPrefix = "SEB" }, "bank.account_prefix", "account"},
		{"prefix with space", func(c *Config) { c.Bank.AccountPrefix = "Assets:My Bank" }, "bank.account_prefix", "account"},
		{"empty ledger path", func(c *Config) { c.Ledger.Path = "" }, "ledger.path", "required"},
		{"blank transfer name", func(c *Config) { c.Bank.OwnTransferNames = []string{""} }, "bank.own_transfer_names[0]", "required"},
		{"bad email", func(c *Config) { c.Git.AuthorEmail = "nope" }, "git.author_email", "email"},
		{"commit without author", func(c *Config) { c.Git.AuthorName = "" }, "git.author_name", "required_if"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var fe FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
			assert.Equal(t, tt.tag, fe.Tag)
		})
	}
}

func TestValidate_AuthorOptionalWithoutCommit(t *testing.T) {
	cfg := Default()
	cfg.Git.AutoCommit = false
	cfg.Git.AuthorName = ""
	cfg.Git.AuthorEmail = ""
	assert.NoError(t, Validate(cfg))
}

func TestValidate_CollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Bank.Name = ""
	cfg.Ledger.AccountsPath = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bank.name")
	assert.Contains(t, err.Error(), "ledger.accounts_path")
}
