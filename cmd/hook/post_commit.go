package hook

import (
	"github.com/lipish/postloop/internal/cli"
	"github.com/lipish/postloop/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var postCommitCmd = &cobra.Command{
	Use:           "post-commit",
	Short:         "Handle the post-commit git hook. Not intended to be run manually.",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// the hook runs from the repository root where the commit happened
		res, err := cli.RunOnce(cmd.Context(), config.FileName, false)
		if err != nil {
			log.Error().Err(err).Msg("deployment pipeline could not start")
			return err
		}
		if !res.OK() {
			log.Error().Err(res.Err).Str("stage", string(res.FailedStage)).Msg("deployment failed")
			if res.RolledBackTo != "" {
				log.Warn().Str("version", res.RolledBackTo).Msg("rolled back to previous version")
			}
			return res.Err
		}
		return nil
	},
}
