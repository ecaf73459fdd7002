package cmd

import (
	"fmt"

	"github.com/lipish/postloop/internal/cli"
	"github.com/lipish/postloop/internal/config"
	"github.com/lipish/postloop/internal/history"
	"github.com/spf13/cobra"
)

var logFlags struct {
	limit int
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent deployment history",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(rootFlags.config)
		if err != nil {
			return err
		}

		db, err := history.Open(cli.HistoryPath(cfg.Watch.RepoPath))
		if err != nil {
			return err
		}

		deps, err := history.NewStore(db).ListRecent(cmd.Context(), logFlags.limit)
		if err != nil {
			return err
		}
		if len(deps) == 0 {
			fmt.Println("No deployments recorded yet")
			return nil
		}

		for _, d := range deps {
			marker := " "
			if d.IsActive {
				marker = "*"
			}
			line := fmt.Sprintf("%s %s  %-8s  %-11s %s",
				marker, d.CreatedAt.Format("2006-01-02 15:04:05"), d.CommitSHA, d.Status, d.Stage)
			if d.Message != "" {
				line += "  " + d.Message
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	logCmd.Flags().IntVarP(&logFlags.limit, "limit", "n", 20, "Number of entries to show")
}
