package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lipish/postloop/internal/build"
	"github.com/lipish/postloop/internal/execute"
	"github.com/lipish/postloop/internal/versions"
	"github.com/rs/zerolog"
)

// ErrNoDeployMethod is returned when the configuration selects no deployment
// mode at all.
var ErrNoDeployMethod = errors.New("no deployment method configured")

// Options describes the deployment mode resolved from configuration.
// Command deployment wins over file deployment, which wins over docker.
type Options struct {
	Command    string
	Artifacts  []string
	TargetDir  string
	Dockerfile string
}

// Deployer performs one deployment per pipeline run.
type Deployer struct {
	Runner execute.Runner
}

// Deploy dispatches to the configured mode. commit is used as the version
// label for file deployment and as the image tag for docker deployment.
func (d Deployer) Deploy(ctx context.Context, opts Options, repoPath, commit string) error {
	switch {
	case opts.Command != "":
		return d.Command(ctx, opts.Command, repoPath)
	case len(opts.Artifacts) > 0 && opts.TargetDir != "":
		return d.Files(ctx, opts.Artifacts, repoPath, opts.TargetDir, commit)
	case opts.Dockerfile != "":
		return d.Container(ctx, repoPath, opts.Dockerfile, commit)
	default:
		return ErrNoDeployMethod
	}
}

// Command runs an external deployment command. Version tracking is the
// command's own responsibility; the current pointer is never touched.
func (d Deployer) Command(ctx context.Context, command, repoPath string) error {
	log := zerolog.Ctx(ctx)
	log.Info().Str("command", command).Msg("deploying with command")

	res, err := d.Runner.Run(ctx, command, repoPath)
	if err != nil {
		return fmt.Errorf("deploy: %w", err)
	}

	log.Debug().Str("stdout", res.Stdout).Msg("deploy command succeeded")
	return nil
}

// Files copies the artifacts into a fresh version directory under targetDir
// and repoints current at it. A failure partway through leaves the partially
// populated directory in place; current is only repointed after every copy
// succeeded.
func (d Deployer) Files(ctx context.Context, artifacts []string, repoPath, targetDir, label string) error {
	log := zerolog.Ctx(ctx)
	store := versions.Store{Root: targetDir}

	dir, err := store.Create(label)
	if err != nil {
		return err
	}

	for _, artifact := range artifacts {
		src := filepath.Join(repoPath, artifact)
		if _, err := os.Stat(src); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", build.ErrArtifactMissing, artifact)
			}
			return fmt.Errorf("stat artifact %s: %w", artifact, err)
		}
		dst := filepath.Join(dir, filepath.Base(artifact))
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("copy artifact %s: %w", artifact, err)
		}
		log.Debug().Str("artifact", artifact).Str("dst", dst).Msg("copied artifact")
	}

	if err := store.SetCurrent(label); err != nil {
		return err
	}

	log.Info().Str("version", label).Str("target", targetDir).Msg("file deployment complete")
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
