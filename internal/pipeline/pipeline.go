package pipeline

import (
	"context"
	"time"

	"github.com/lipish/postloop/internal/build"
	"github.com/lipish/postloop/internal/config"
	"github.com/lipish/postloop/internal/deploy"
	"github.com/lipish/postloop/internal/entity"
	"github.com/lipish/postloop/internal/execute"
	"github.com/lipish/postloop/internal/gitsync"
	"github.com/lipish/postloop/internal/rollback"
	"github.com/lipish/postloop/internal/versions"
	"github.com/rs/zerolog"
)

// Stage names the pipeline step a run is in or failed at.
type Stage string

const (
	StageBuild  Stage = "build"
	StageVerify Stage = "verify"
	StageDeploy Stage = "deploy"
	StageSync   Stage = "sync"
	StageDone   Stage = "done"
)

// Result is the terminal outcome of one pipeline run. Err is nil on success;
// otherwise FailedStage names the fatal stage. RolledBackTo is set when a
// failed deploy was recovered by repointing current at an older version.
type Result struct {
	Commit       string
	Err          error
	FailedStage  Stage
	RolledBackTo string
}

func (r Result) OK() bool { return r.Err == nil }

// Recorder persists run outcomes; history.Recorder implements it. A nil
// Recorder disables history tracking.
type Recorder interface {
	Begin(ctx context.Context, commit, branch string) (*entity.Deployment, error)
	Complete(ctx context.Context, dep *entity.Deployment, status entity.DeploymentStatus, stage, message string) error
}

// Syncer pushes the deployed branch to a remote after a successful deploy.
type Syncer interface {
	Push(ctx context.Context, repoPath, remote, branch string) error
}

// Pipeline sequences build, verify, deploy, rollback-on-failure, prune and
// sync for a single commit. Runs are strictly sequential; one Pipeline must
// not be driven concurrently against the same deployment root.
type Pipeline struct {
	Config   *config.Config
	Build    build.Executor
	Deploy   deploy.Deployer
	Sync     Syncer
	Recorder Recorder
}

// New wires a pipeline from configuration, applying the configured command
// timeouts to the build and deploy runners.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		Config: cfg,
		Build:  build.Executor{Runner: execute.Runner{Timeout: seconds(cfg.Build.TimeoutSeconds)}},
		Deploy: deploy.Deployer{Runner: execute.Runner{Timeout: seconds(cfg.Deploy.TimeoutSeconds)}},
		Sync:   gitsync.Syncer{},
	}
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// Run executes the full pipeline for the given commit. Build, verify and
// deploy failures are fatal; rollback, prune and sync failures are logged
// and never change the outcome.
func (p *Pipeline) Run(ctx context.Context, commit string) Result {
	log := zerolog.Ctx(ctx)
	cfg := p.Config
	repoPath := cfg.Watch.RepoPath

	log.Info().Str("commit", commit).Msg("starting deployment")

	var dep *entity.Deployment
	if p.Recorder != nil {
		var err error
		if dep, err = p.Recorder.Begin(ctx, commit, cfg.Watch.Branch); err != nil {
			log.Warn().Err(err).Msg("failed to record deployment start")
			dep = nil
		}
	}

	fail := func(stage Stage, err error, rolledBackTo string) Result {
		status := entity.DeploymentStatusFailed
		if rolledBackTo != "" {
			status = entity.DeploymentStatusRolledBack
		}
		p.record(ctx, dep, status, stage, err.Error())
		return Result{Commit: commit, Err: err, FailedStage: stage, RolledBackTo: rolledBackTo}
	}

	if err := p.Build.Run(ctx, cfg.Build.Command, repoPath); err != nil {
		log.Error().Err(err).Msg("build failed")
		return fail(StageBuild, err, "")
	}

	if len(cfg.Deploy.Artifacts) > 0 {
		if err := p.Build.VerifyArtifacts(ctx, repoPath, cfg.Deploy.Artifacts); err != nil {
			log.Error().Err(err).Msg("artifact verification failed")
			return fail(StageVerify, err, "")
		}
	}

	opts := deploy.Options{
		Command:    cfg.Deploy.Command,
		Artifacts:  cfg.Deploy.Artifacts,
		TargetDir:  cfg.Deploy.TargetDir,
		Dockerfile: cfg.Deploy.Dockerfile,
	}
	if err := p.Deploy.Deploy(ctx, opts, repoPath, commit); err != nil {
		log.Error().Err(err).Msg("deployment failed")
		return fail(StageDeploy, err, p.tryRollback(ctx))
	}

	if cfg.Rollback.Enabled && cfg.Deploy.TargetDir != "" {
		engine := rollback.Engine{Store: versions.Store{Root: cfg.Deploy.TargetDir}}
		if err := engine.Prune(ctx, cfg.Rollback.KeepVersions); err != nil {
			log.Warn().Err(err).Msg("failed to prune old versions")
		}
	}

	if cfg.Sync.Enabled && p.Sync != nil {
		if err := p.Sync.Push(ctx, repoPath, cfg.Sync.Remote, cfg.Sync.Branch); err != nil {
			// the deployment itself already succeeded
			log.Warn().Err(err).Msg("sync to remote failed")
		}
	}

	p.record(ctx, dep, entity.DeploymentStatusSuccess, StageDone, "")
	log.Info().Str("commit", commit).Msg("deployment complete")
	return Result{Commit: commit}
}

// tryRollback attempts a rollback to the previous version after a failed
// deploy. It only applies in file-deployment mode with rollback enabled;
// command and docker deployments own their version state. Returns the label
// rolled back to, or empty if no rollback happened.
func (p *Pipeline) tryRollback(ctx context.Context) string {
	cfg := p.Config
	fileMode := cfg.Deploy.Command == "" && cfg.Deploy.TargetDir != "" && len(cfg.Deploy.Artifacts) > 0
	if !cfg.Rollback.Enabled || !fileMode {
		return ""
	}

	log := zerolog.Ctx(ctx)
	log.Info().Msg("attempting rollback")

	engine := rollback.Engine{Store: versions.Store{Root: cfg.Deploy.TargetDir}}
	label, err := engine.ToPrevious(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("rollback failed")
		return ""
	}
	return label
}

func (p *Pipeline) record(ctx context.Context, dep *entity.Deployment, status entity.DeploymentStatus, stage Stage, message string) {
	if p.Recorder == nil || dep == nil {
		return
	}
	if err := p.Recorder.Complete(ctx, dep, status, string(stage), message); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to record deployment outcome")
	}
}
