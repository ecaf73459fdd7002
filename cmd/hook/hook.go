package hook

import "github.com/spf13/cobra"

// HookCmd groups the git hook entry points. Not intended to be run manually.
var HookCmd = &cobra.Command{Use: "hook", Hidden: true}

func init() {
	HookCmd.AddCommand(postCommitCmd)
}
