package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/sebimport/internal/accounts"
	"github.com/cleared-dev/sebimport/internal/logger"
	"github.com/cleared-dev/sebimport/internal/opens"
)

func newOpensCommand() *cobra.Command {
	var output string
	var toStdout bool
	var checkExisting string
	var openDate string
	var appendMode bool

	cmd := &cobra.Command{
		Use:   "opens <ledger.beancount>",
		Short: "Generate open directives for accounts used in a ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.FromContext(cmd.Context())
			input := args[0]

			if err := opens.ValidateDate(openDate); err != nil {
				return err
			}

			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("opening input: %w", err)
			}
			defer f.Close()

			log.Info().Str("file", input).Msg("scanning for account names")
			usage, err := opens.ExtractAccounts(f)
			if err != nil {
				return err
			}
			if len(usage) == 0 {
				log.Info().Msg("no accounts found in the input file")
				return nil
			}
			log.Info().Int("accounts", len(usage)).Msg("found unique accounts")

			declared := accounts.NewService(nil)
			if checkExisting != "" {
				if declared, err = accounts.Load(checkExisting); err != nil {
					return err
				}
				log.Info().Str("file", checkExisting).Int("opens", declared.Len()).Msg("checked existing opens")
			}

			lines := opens.Generate(usage, declared, openDate)
			if len(lines) == 0 {
				log.Info().Msg("all accounts already have open directives")
				return nil
			}
			text := opens.Render(input, lines, time.Now())

			if toStdout {
				_, err := fmt.Fprint(cmd.OutOrStdout(), text)
				return err
			}
			if err := opens.WriteFile(output, text, appendMode); err != nil {
				return err
			}
			action := "written to"
			if appendMode {
				action = "appended to"
			}
			log.Info().Str("file", output).Int("opens", opens.Count(lines)).Msg("open directives " + action)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "accounts.beancount", "file to write open directives to")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "print directives instead of writing a file")
	cmd.Flags().StringVar(&checkExisting, "check-existing", "", "accounts file whose opens are not repeated")
	cmd.Flags().StringVar(&openDate, "open-date", opens.DefaultDate, "date for the open directives (YYYY-MM-DD)")
	cmd.Flags().BoolVarP(&appendMode, "append", "a", false, "append to the output file instead of overwriting")

	return cmd
}
