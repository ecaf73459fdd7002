package gitsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/lipish/postloop/internal/execute"
	"github.com/rs/zerolog"
)

// Syncer pushes the deployed branch to a remote and reports whether local
// commits are still unpushed.
type Syncer struct {
	Runner execute.Runner
}

// Push runs `git push remote branch` in the repository.
func (s Syncer) Push(ctx context.Context, repoPath, remote, branch string) error {
	log := zerolog.Ctx(ctx)
	log.Info().Str("remote", remote).Str("branch", branch).Msg("syncing to remote")

	if _, err := s.Runner.Run(ctx, fmt.Sprintf("git push %s %s", remote, branch), repoPath); err != nil {
		return fmt.Errorf("git push: %w", err)
	}
	return nil
}

// HasUnpushed compares the local branch head against the remote tracking ref.
// A remote ref that does not exist yet counts as unpushed.
func (s Syncer) HasUnpushed(ctx context.Context, repoPath, remote, branch string) (bool, error) {
	local, err := s.revParse(ctx, repoPath, branch)
	if err != nil {
		return false, fmt.Errorf("resolve local branch: %w", err)
	}

	remoteRef, err := s.revParse(ctx, repoPath, fmt.Sprintf("%s/%s", remote, branch))
	if err != nil {
		// remote branch may simply not exist yet
		return true, nil
	}

	return local != remoteRef, nil
}

func (s Syncer) revParse(ctx context.Context, repoPath, ref string) (string, error) {
	res, err := s.Runner.Run(ctx, fmt.Sprintf("git rev-parse %s", ref), repoPath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}
