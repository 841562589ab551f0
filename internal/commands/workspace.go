package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/sebimport/internal/config"
	"github.com/cleared-dev/sebimport/internal/importer"
	"github.com/cleared-dev/sebimport/internal/logger"
	"github.com/cleared-dev/sebimport/internal/model"
)

// loadConfig reads <repo>/sebimport.yaml, falling back to defaults when the
// directory is not a workspace, then applies environment overrides.
func loadConfig(repo string) (*config.Config, error) {
	cfg := config.Default()
	path := filepath.Join(repo, config.FileName)
	if _, err := os.Stat(path); err == nil {
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("checking config: %w", err)
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parserOptions translates config into importer options. Skipped rows are
// logged through log.
func parserOptions(cfg *config.Config, log zerolog.Logger) []importer.Option {
	return []importer.Option{
		importer.WithBankName(cfg.Bank.Name),
		importer.WithCreateOpens(cfg.Bank.CreateNewAccounts),
		importer.WithOwnTransfers(cfg.Bank.OwnTransferNames...),
		importer.WithReporter(logger.NewReporter(log)),
	}
}

func accountPrefix(cfg *config.Config) model.Account {
	return model.Account(cfg.Bank.AccountPrefix)
}

// resolve joins relative config paths onto the workspace root.
func resolve(repo, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(repo, path)
}
