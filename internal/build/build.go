package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lipish/postloop/internal/execute"
	"github.com/rs/zerolog"
)

// ErrArtifactMissing is returned when an expected build output does not exist.
var ErrArtifactMissing = errors.New("artifact not found")

// Executor runs the configured build command inside the repository.
type Executor struct {
	Runner execute.Runner
}

// Run executes the build command in repoPath and fails with the captured
// stderr when the command exits non-zero.
func (e Executor) Run(ctx context.Context, command, repoPath string) error {
	log := zerolog.Ctx(ctx)
	log.Info().Str("command", command).Msg("starting build")

	res, err := e.Runner.Run(ctx, command, repoPath)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	log.Debug().Str("stdout", res.Stdout).Msg("build succeeded")
	return nil
}

// VerifyArtifacts checks that every expected artifact exists under repoPath,
// failing on the first missing one in input order.
func (e Executor) VerifyArtifacts(ctx context.Context, repoPath string, artifacts []string) error {
	log := zerolog.Ctx(ctx)
	for _, artifact := range artifacts {
		path := filepath.Join(repoPath, artifact)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", ErrArtifactMissing, artifact)
			}
			return fmt.Errorf("stat artifact %s: %w", artifact, err)
		}
		log.Debug().Str("artifact", artifact).Msg("verified artifact")
	}
	return nil
}
