package cmd

import (
	"errors"

	"github.com/lipish/postloop/internal/config"
	"github.com/lipish/postloop/internal/rollback"
	"github.com/lipish/postloop/internal/versions"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rollbackFlags struct {
	version string
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Roll back to the previous version, or a specific one",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rootFlags.config)
		if err != nil {
			return err
		}
		if !cfg.Rollback.Enabled {
			return errors.New("rollback is not enabled in configuration")
		}
		if cfg.Deploy.TargetDir == "" {
			return errors.New("no target_dir configured for rollback")
		}

		ctx := log.Logger.WithContext(cmd.Context())
		engine := rollback.Engine{Store: versions.Store{Root: cfg.Deploy.TargetDir}}

		if rollbackFlags.version != "" {
			if err := engine.ToVersion(ctx, rollbackFlags.version); err != nil {
				return err
			}
			log.Info().Str("version", rollbackFlags.version).Msg("rolled back")
			return nil
		}

		label, err := engine.ToPrevious(ctx)
		if err != nil {
			return err
		}
		log.Info().Str("version", label).Msg("rolled back")
		return nil
	},
}

func init() {
	rollbackCmd.Flags().StringVarP(&rollbackFlags.version, "version", "V", "", "Specific version to roll back to")
}
