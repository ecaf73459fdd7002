package cmd

import (
	"fmt"

	"github.com/lipish/postloop/internal/cli"
	"github.com/lipish/postloop/internal/config"
	"github.com/lipish/postloop/internal/execute"
	"github.com/lipish/postloop/internal/githook"
	"github.com/lipish/postloop/internal/gitsync"
	"github.com/lipish/postloop/internal/versions"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show deployment status and version history",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rootFlags.config)
		if err != nil {
			return err
		}
		ctx := log.Logger.WithContext(cmd.Context())

		commit, err := cli.ResolveCommit(ctx, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Current commit:   %s\n", commit)

		installed := "not installed"
		if githook.IsInstalled(cfg.Watch.RepoPath) {
			installed = "installed"
		}
		fmt.Printf("Post-commit hook: %s\n", installed)

		if cfg.Deploy.TargetDir != "" {
			store := versions.Store{Root: cfg.Deploy.TargetDir}
			vs, err := store.List()
			if err != nil {
				return err
			}
			current, _, err := store.Current()
			if err != nil {
				return err
			}
			if len(vs) == 0 {
				fmt.Println("\nNo deployments found")
			} else {
				fmt.Println("\nDeployed versions:")
				for _, v := range vs {
					marker := " "
					if v.Label == current {
						marker = "*"
					}
					fmt.Printf("  %s %s  %s\n", marker, v.Label, v.CreatedAt.Format("2006-01-02 15:04:05"))
				}
			}
		}

		if cfg.Sync.Enabled {
			fmt.Println("\nRemote sync: enabled")
			syncer := gitsync.Syncer{Runner: execute.Runner{}}
			unpushed, err := syncer.HasUnpushed(ctx, cfg.Watch.RepoPath, cfg.Sync.Remote, cfg.Sync.Branch)
			switch {
			case err != nil:
				fmt.Printf("  could not check remote: %v\n", err)
			case unpushed:
				fmt.Println("  has unpushed commits")
			default:
				fmt.Println("  up to date")
			}
		}
		return nil
	},
}
