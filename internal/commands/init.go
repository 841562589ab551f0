package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/sebimport/internal/config"
	"github.com/cleared-dev/sebimport/internal/gitops"
	"github.com/cleared-dev/sebimport/internal/logger"
)

func newInitCommand() *cobra.Command {
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new sebimport workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			hash, err := runInit(absDir, !noGit)
			if err != nil {
				return err
			}
			log := logger.FromContext(cmd.Context())
			log.Info().Str("dir", absDir).Str("commit", hash).Msg("initialized workspace")
			return nil
		},
	}

	cmd.Flags().BoolVar(&noGit, "no-git", false, "skip git init and the initial commit")

	return cmd
}

// The import log records commit hashes, so it stays out of history.
const gitignore = "logs/\n"

func runInit(dir string, withGit bool) (string, error) {
	cfg := config.Default()

	dirs := []string{
		"import",
		filepath.Join("import", "processed"),
		filepath.Dir(cfg.Ledger.Path),
		"logs",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	configPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}
	if err := config.Save(configPath, cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	files := map[string]string{
		".gitignore":                        gitignore,
		filepath.Join("import", ".gitkeep"): "",
		cfg.Ledger.AccountsPath:             ";; Account opening directives\n",
		cfg.Ledger.Path:                     ";; Imported transactions\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("writing %s: %w", name, err)
		}
	}

	if !withGit {
		return "", nil
	}
	if err := gitops.Init(dir); err != nil {
		return "", fmt.Errorf("git init: %w", err)
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(dir, "init: Initialize sebimport workspace", author)
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}
