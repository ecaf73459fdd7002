package cmd

import (
	"os"

	"github.com/lipish/postloop/cmd/hook"
	"github.com/lipish/postloop/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootFlags struct {
	verbose bool
	config  string
}

var rootCmd = &cobra.Command{
	Use:           "postloop",
	Short:         "Post-commit loop - local git auto-deployment tool",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		if rootFlags.verbose {
			log.Logger = log.Logger.Level(zerolog.DebugLevel)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Send()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&rootFlags.config, "config", "c", config.FileName, "Path to the configuration file")
	rootCmd.AddCommand(initCmd, runCmd, rollbackCmd, statusCmd, logCmd, serveCmd, hook.HookCmd)
}
