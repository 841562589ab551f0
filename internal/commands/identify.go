package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/sebimport/internal/importer"
)

func newIdentifyCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "identify <file>",
		Short: "Report whether a file is a supported statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global.repo)
			if err != nil {
				return err
			}
			path := args[0]

			imp, err := importer.DefaultRegistry(accountPrefix(cfg)).Identify(path)
			if err != nil {
				return err
			}
			if imp == nil {
				return fmt.Errorf("%s: not a recognised statement", filepath.Base(path))
			}

			account, last, err := describe(imp, path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "format:    %s\n", imp.Format())
			fmt.Fprintf(out, "account:   %s\n", account)
			if !last.IsZero() {
				fmt.Fprintf(out, "last date: %s\n", last.Format("2006-01-02"))
			}
			fmt.Fprintf(out, "archive:   %s\n", imp.FileName(path))
			return nil
		},
	}
}

func describe(imp importer.Importer, path string) (string, time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	account := imp.Account(f)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", time.Time{}, fmt.Errorf("rewinding %s: %w", path, err)
	}
	last, _ := imp.LastDate(f)
	return string(account), last, nil
}
