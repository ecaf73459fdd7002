package githook

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lipish/postloop/internal/execute"
	"github.com/rs/zerolog"
)

// hookName is the git hook the pipeline is attached to.
const hookName = "post-commit"

// marker identifies a hook script installed by postloop, so re-runs of init
// recognize it and foreign hooks are never overwritten silently.
const marker = "# installed by postloop"

// IsRepo reports whether repoPath is the top of a git working tree.
func IsRepo(repoPath string) bool {
	info, err := os.Stat(filepath.Join(repoPath, ".git"))
	return err == nil && info.IsDir()
}

// ShortHash returns the abbreviated hash of HEAD.
func ShortHash(ctx context.Context, runner execute.Runner, repoPath string) (string, error) {
	res, err := runner.Run(ctx, "git rev-parse --short HEAD", repoPath)
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// Install writes the post-commit hook script that invokes `postloop hook
// post-commit` after every commit.
func Install(ctx context.Context, repoPath string) error {
	log := zerolog.Ctx(ctx)

	hooksDir := filepath.Join(repoPath, ".git", "hooks")
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return fmt.Errorf("create hooks dir: %w", err)
	}

	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	scriptPath := filepath.Join(hooksDir, hookName)
	script := shellScript(marker, fmt.Sprintf("%s hook post-commit", exe))
	if err := os.WriteFile(scriptPath, []byte(script), 0o755); err != nil {
		return fmt.Errorf("write %s hook: %w", hookName, err)
	}

	log.Info().Str("hook", scriptPath).Msg("installed post-commit hook")
	return nil
}

// IsInstalled reports whether the postloop post-commit hook is present.
func IsInstalled(repoPath string) bool {
	data, err := os.ReadFile(filepath.Join(repoPath, ".git", "hooks", hookName))
	if err != nil {
		return false
	}
	return strings.Contains(string(data), marker)
}

func shellScript(lines ...string) string {
	return "#!/bin/sh\n" + strings.Join(lines, "\n") + "\n"
}
