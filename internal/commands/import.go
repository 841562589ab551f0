package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/sebimport/internal/accounts"
	"github.com/cleared-dev/sebimport/internal/config"
	"github.com/cleared-dev/sebimport/internal/gitops"
	"github.com/cleared-dev/sebimport/internal/importer"
	"github.com/cleared-dev/sebimport/internal/importlog"
	"github.com/cleared-dev/sebimport/internal/ledger"
	"github.com/cleared-dev/sebimport/internal/logger"
)

func newImportCommand(global *globalOptions) *cobra.Command {
	var noCommit bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import every statement in the workspace import directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(global.repo)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			cfg, err := loadConfig(absDir)
			if err != nil {
				return err
			}
			if noCommit {
				cfg.Git.AutoCommit = false
			}
			return runImport(absDir, cfg, logger.FromContext(cmd.Context()), time.Now)
		},
	}

	cmd.Flags().BoolVar(&noCommit, "no-commit", false, "leave changes uncommitted")

	return cmd
}

// runImport extracts each statement into the ledger and moves it to
// import/processed. A failing statement is left in place and reported once
// every other statement has been handled.
func runImport(repo string, cfg *config.Config, log zerolog.Logger, now func() time.Time) error {
	files, err := importer.Scan(repo)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Info().Msg("no statements to import")
		return nil
	}

	ledgerPath := resolve(repo, cfg.Ledger.Path)
	svc := ledger.NewService(ledgerPath)
	links, err := svc.Links()
	if err != nil {
		return err
	}
	declared, err := accounts.Load(ledgerPath, resolve(repo, cfg.Ledger.AccountsPath))
	if err != nil {
		return err
	}

	opts := append(parserOptions(cfg, log),
		importer.WithExisting(links),
		importer.WithDeclared(declared))
	registry := importer.DefaultRegistry(accountPrefix(cfg), opts...)

	runID := importlog.NewRunID()
	log = log.With().Str("run", runID).Logger()

	var errs *multierror.Error
	var entries []importlog.Entry
	for _, f := range files {
		got, err := importOne(repo, registry, svc, f)
		if err != nil {
			log.Error().Err(err).Str("file", f.Name).Msg("import failed")
			errs = multierror.Append(errs, err)
			continue
		}

		// Later statements in this run dedup against earlier ones.
		for _, txn := range got.result.Transactions {
			for _, l := range txn.Links {
				links[l] = true
			}
		}
		for _, o := range got.result.Opens {
			declared.Add(o.Account)
		}

		log.Info().
			Str("file", f.Name).
			Str("archived_as", got.archivedAs).
			Int("transactions", len(got.result.Transactions)).
			Int("opens", len(got.result.Opens)).
			Int("skipped", got.result.Skipped).
			Int("blank", got.result.Blank).
			Int("duplicates", got.result.Duplicates).
			Msg("imported")

		entries = append(entries, importlog.Entry{
			RunID:        runID,
			Timestamp:    now().UTC(),
			File:         f.Name,
			ArchivedAs:   got.archivedAs,
			Transactions: len(got.result.Transactions),
			Opens:        len(got.result.Opens),
			Skipped:      got.result.Skipped,
			Duplicates:   got.result.Duplicates,
		})
	}

	if len(entries) > 0 {
		hash, err := commitImport(repo, cfg, ledgerPath, len(entries))
		if err != nil {
			errs = multierror.Append(errs, err)
		}
		for i := range entries {
			entries[i].CommitHash = hash
		}
		if err := importlog.Append(repo, entries); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

type imported struct {
	result     *importer.Result
	archivedAs string
}

func importOne(repo string, registry *importer.Registry, svc *ledger.Service, f importer.FileInfo) (*imported, error) {
	imp, err := registry.Identify(f.Path)
	if err != nil {
		return nil, err
	}
	if imp == nil {
		return nil, fmt.Errorf("%s: not a recognised statement", f.Name)
	}

	res, err := importer.ExtractFile(imp, f.Path)
	if err != nil {
		return nil, err
	}
	if err := svc.Append(res.Entries()); err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}

	archivedAs := imp.FileName(f.Path)
	if err := importer.MarkProcessed(repo, f.Name, archivedAs); err != nil {
		return nil, err
	}
	return &imported{result: res, archivedAs: archivedAs}, nil
}

// commitImport commits the ledger files and the processed statements. It returns
// an empty hash when auto-commit is off or the workspace is not a git repo.
func commitImport(repo string, cfg *config.Config, ledgerPath string, n int) (string, error) {
	if !cfg.Git.AutoCommit || !gitops.IsRepo(repo) {
		return "", nil
	}

	var paths []string
	for _, p := range []string{ledgerPath, resolve(repo, cfg.Ledger.AccountsPath), filepath.Join(repo, "import", "processed")} {
		rel, err := filepath.Rel(repo, p)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, rel)
		}
	}

	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitPaths(repo, fmt.Sprintf("import: %d statement(s)", n), author, paths...)
	if err != nil {
		return "", fmt.Errorf("committing import: %w", err)
	}
	return hash, nil
}
