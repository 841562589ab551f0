package commands

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/sebimport/internal/buildinfo"
	"github.com/cleared-dev/sebimport/internal/logger"
)

type globalOptions struct {
	repo     string
	logLevel string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "sebimport",
		Short:   "Convert SEB bank statements into a Beancount ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log := logger.NewWithWriter(zerolog.ConsoleWriter{
				Out:        cmd.ErrOrStderr(),
				NoColor:    true,
				TimeFormat: time.RFC3339,
			}, logger.ParseLevel(opts.logLevel))
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.repo, "repo", ".", "workspace directory")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", os.Getenv("LOG_LEVEL"), "debug, info, warn or error")

	rootCmd.AddCommand(
		newInitCommand(),
		newExtractCommand(opts),
		newImportCommand(opts),
		newIdentifyCommand(opts),
		newOpensCommand(),
	)

	return rootCmd
}
