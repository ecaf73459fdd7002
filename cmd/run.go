package cmd

import (
	"github.com/lipish/postloop/internal/cli"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the deployment pipeline manually",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := cli.RunOnce(cmd.Context(), rootFlags.config, rootFlags.verbose)
		if err != nil {
			return err
		}
		if !res.OK() {
			if res.RolledBackTo != "" {
				log.Warn().Str("version", res.RolledBackTo).Msg("rolled back after failed deployment")
			}
			return res.Err
		}
		log.Info().Str("commit", res.Commit).Msg("deployment complete")
		return nil
	},
}
