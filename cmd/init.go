package cmd

import (
	"errors"

	"github.com/lipish/postloop/internal/config"
	"github.com/lipish/postloop/internal/githook"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize postloop in the current git repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath := "."
		if !githook.IsRepo(repoPath) {
			return errors.New("not a git repository, run 'git init' first")
		}

		if config.Exists(rootFlags.config) {
			log.Info().Str("path", rootFlags.config).Msg("configuration file already exists")
		} else {
			if err := config.Default().Save(rootFlags.config); err != nil {
				return err
			}
			log.Info().Str("path", rootFlags.config).Msg("created default configuration file")
		}

		if githook.IsInstalled(repoPath) {
			log.Info().Msg("post-commit hook already installed")
		} else {
			ctx := log.Logger.WithContext(cmd.Context())
			if err := githook.Install(ctx, repoPath); err != nil {
				return err
			}
		}

		log.Info().Msgf("initialization complete, edit %s to configure your deployment", rootFlags.config)
		return nil
	},
}
