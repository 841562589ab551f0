package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/sebimport/internal/accounts"
	"github.com/cleared-dev/sebimport/internal/importer"
	"github.com/cleared-dev/sebimport/internal/ledger"
	"github.com/cleared-dev/sebimport/internal/logger"
)

func newExtractCommand(global *globalOptions) *cobra.Command {
	var output string
	var existing string
	var explain bool

	cmd := &cobra.Command{
		Use:   "extract <file.csv>",
		Short: "Print Beancount entries for one statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.FromContext(cmd.Context())

			cfg, err := loadConfig(global.repo)
			if err != nil {
				return err
			}

			opts := append(parserOptions(cfg, log), importer.WithExplain(explain))
			if existing != "" {
				links, err := ledger.NewService(existing).Links()
				if err != nil {
					return err
				}
				declared, err := accounts.Load(existing)
				if err != nil {
					return err
				}
				opts = append(opts, importer.WithExisting(links), importer.WithDeclared(declared))
			}

			imp, err := importer.DefaultRegistry(accountPrefix(cfg), opts...).Identify(args[0])
			if err != nil {
				return err
			}
			if imp == nil {
				return fmt.Errorf("%s: not a recognised statement", filepath.Base(args[0]))
			}

			res, err := importer.ExtractFile(imp, args[0])
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if err := ledger.WriteEntries(w, res.Entries()); err != nil {
				return err
			}

			log.Info().
				Str("file", res.File).
				Int("transactions", len(res.Transactions)).
				Int("opens", len(res.Opens)).
				Int("skipped", res.Skipped).
				Int("blank", res.Blank).
				Int("duplicates", res.Duplicates).
				Msg("extracted")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write entries to a file instead of stdout")
	cmd.Flags().StringVar(&existing, "existing", "", "ledger whose links and opens are not repeated")
	cmd.Flags().BoolVar(&explain, "explain", false, "record the matching classification rule on each transaction")

	return cmd
}
