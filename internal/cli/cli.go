package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lipish/postloop/internal/config"
	"github.com/lipish/postloop/internal/execute"
	"github.com/lipish/postloop/internal/githook"
	"github.com/lipish/postloop/internal/history"
	"github.com/lipish/postloop/internal/pipeline"
	"github.com/rs/zerolog"
)

// historyDirName holds postloop's own state inside the watched repository.
const historyDirName = ".postloop"

// HistoryPath returns the sqlite history database path for a repository.
func HistoryPath(repoPath string) string {
	return filepath.Join(repoPath, historyDirName, "history.db")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenLogger builds the run logger: console on stderr, plus the configured
// log file in append mode when one is set. The returned closer releases the
// file handle.
func OpenLogger(logCfg config.LogConfig, verbose bool) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(logCfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	var closer io.Closer = nopCloser{}
	if logCfg.File != "" {
		f, err := os.OpenFile(logCfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

// NewPipeline wires a pipeline from configuration, attaching the history
// recorder when the history database can be opened. History being
// unavailable downgrades to a pipeline without run records.
func NewPipeline(ctx context.Context, cfg *config.Config) *pipeline.Pipeline {
	p := pipeline.New(cfg)
	db, err := history.Open(HistoryPath(cfg.Watch.RepoPath))
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("deployment history unavailable")
		return p
	}
	p.Recorder = history.NewRecorder(history.NewStore(db))
	return p
}

// ResolveCommit returns the short hash of HEAD in the watched repository.
func ResolveCommit(ctx context.Context, cfg *config.Config) (string, error) {
	return githook.ShortHash(ctx, execute.Runner{}, cfg.Watch.RepoPath)
}

// RunOnce executes one full pipeline run: load configuration, set up the run
// logger, resolve HEAD and drive the pipeline. Shared by `postloop run` and
// the installed post-commit hook.
func RunOnce(ctx context.Context, configPath string, verbose bool) (pipeline.Result, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return pipeline.Result{}, err
	}

	logger, closer, err := OpenLogger(cfg.Log, verbose)
	if err != nil {
		return pipeline.Result{}, err
	}
	defer closer.Close()
	ctx = logger.WithContext(ctx)

	commit, err := ResolveCommit(ctx, cfg)
	if err != nil {
		return pipeline.Result{}, err
	}

	return NewPipeline(ctx, cfg).Run(ctx, commit), nil
}
