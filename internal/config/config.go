package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/sebimport/internal/model"
)

// FileName is the config file at the root of a sebimport workspace.
const FileName = "sebimport.yaml"

// EnvPrefix prefixes environment variables that override file values.
const EnvPrefix = "SEBIMPORT_"

// Config represents the top-level sebimport.yaml configuration.
type Config struct {
	Bank   BankConfig   `yaml:"bank"`
	Ledger LedgerConfig `yaml:"ledger"`
	Git    GitConfig    `yaml:"git"`
}

// BankConfig controls how statements are turned into postings.
type BankConfig struct {
	Name              string   `yaml:"name" validate:"required"`
	AccountPrefix     string   `yaml:"account_prefix" validate:"required,account"`
	CreateNewAccounts bool     `yaml:"create_new_accounts"`
	OwnTransferNames  []string `yaml:"own_transfer_names,omitempty" validate:"dive,required"`
}

// LedgerConfig locates the Beancount files, relative to the workspace root.
type LedgerConfig struct {
	Path         string `yaml:"path" validate:"required"`
	AccountsPath string `yaml:"accounts_path" validate:"required"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name" validate:"required_if=AutoCommit true"`
	AuthorEmail string `yaml:"author_email" validate:"omitempty,email"`
}

// Load reads a sebimport.yaml file from disk. Keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default() *Config {
	return &Config{
		Bank: BankConfig{
			Name:              "SEB",
			AccountPrefix:     "Assets:SEB",
			CreateNewAccounts: true,
		},
		Ledger: LedgerConfig{
			Path:         "ledger/transactions.beancount",
			AccountsPath: "ledger/accounts.beancount",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "sebimport",
			AuthorEmail: "sebimport@localhost",
		},
	}
}

// envKeys maps override variables to config paths.
var envKeys = map[string]string{
	EnvPrefix + "BANK_NAME":                "bank.name",
	EnvPrefix + "BANK_ACCOUNT_PREFIX":      "bank.account_prefix",
	EnvPrefix + "BANK_CREATE_NEW_ACCOUNTS": "bank.create_new_accounts",
	EnvPrefix + "BANK_OWN_TRANSFER_NAMES":  "bank.own_transfer_names",
	EnvPrefix + "LEDGER_PATH":              "ledger.path",
	EnvPrefix + "LEDGER_ACCOUNTS_PATH":     "ledger.accounts_path",
	EnvPrefix + "GIT_AUTO_COMMIT":          "git.auto_commit",
	EnvPrefix + "GIT_AUTHOR_NAME":          "git.author_name",
	EnvPrefix + "GIT_AUTHOR_EMAIL":         "git.author_email",
}

// ApplyEnv overrides cfg with SEBIMPORT_* environment variables.
// SEBIMPORT_BANK_OWN_TRANSFER_NAMES is a comma-separated list.
func ApplyEnv(cfg *Config) error {
	k := koanf.New(".")
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return fmt.Errorf("loading config from environment: %w", err)
	}

	setString(k, "bank.name", &cfg.Bank.Name)
	setString(k, "bank.account_prefix", &cfg.Bank.AccountPrefix)
	setString(k, "ledger.path", &cfg.Ledger.Path)
	setString(k, "ledger.accounts_path", &cfg.Ledger.AccountsPath)
	setString(k, "git.author_name", &cfg.Git.AuthorName)
	setString(k, "git.author_email", &cfg.Git.AuthorEmail)

	if k.Exists("bank.own_transfer_names") {
		cfg.Bank.OwnTransferNames = splitList(k.String("bank.own_transfer_names"))
	}

	var errs *multierror.Error
	for key, dst := range map[string]*bool{
		"bank.create_new_accounts": &cfg.Bank.CreateNewAccounts,
		"git.auto_commit":          &cfg.Git.AutoCommit,
	} {
		if err := setBool(k, key, dst); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func setString(k *koanf.Koanf, key string, dst *string) {
	if k.Exists(key) {
		*dst = k.String(key)
	}
}

func setBool(k *koanf.Koanf, key string, dst *bool) error {
	if !k.Exists(key) {
		return nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(k.String(key)))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = v
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("account", func(fl validator.FieldLevel) bool {
		return model.Account(fl.Field().String()).Valid()
	})
	return v
}

// FieldError describes one invalid config value.
type FieldError struct {
	Field string
	Tag   string
	Value any
}

func (e FieldError) Error() string {
	return fmt.Sprintf("config %s: failed %q check (value %v)", e.Field, e.Tag, e.Value)
}

// Validate checks cfg and returns every problem found.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	var errs *multierror.Error
	for _, fe := range valErrs {
		errs = multierror.Append(errs, FieldError{
			Field: strings.TrimPrefix(fe.Namespace(), "Config."),
			Tag:   fe.Tag(),
			Value: fe.Value(),
		})
	}
	return errs.ErrorOrNil()
}
