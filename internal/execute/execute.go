package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrEmptyCommand is returned when a command line contains no tokens.
var ErrEmptyCommand = errors.New("empty command")

// ExitError reports a command that ran but terminated with a non-zero status.
// Stderr carries whatever the process wrote before exiting.
type ExitError struct {
	Program string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s exited with status %d", e.Program, e.Code)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Program, e.Code, msg)
}

// Result holds the captured output of a completed command.
type Result struct {
	Stdout string
	Stderr string
}

// Runner executes external commands synchronously in a working directory.
// A zero Timeout means the command may run forever.
type Runner struct {
	Timeout time.Duration
}

// Run tokenizes command by whitespace and executes it in dir, blocking until
// the child exits. The captured output is returned even when the command
// fails, so callers can surface stderr.
func (r Runner) Run(ctx context.Context, command, dir string) (*Result, error) {
	log := zerolog.Ctx(ctx)

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return nil, ErrEmptyCommand
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().Strs("command", cmd.Args).Str("dir", dir).Msg("executing command")

	err := cmd.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, fmt.Errorf("run %s: %w", parts[0], ctxErr)
			}
			return res, &ExitError{Program: parts[0], Code: exitErr.ExitCode(), Stderr: res.Stderr}
		}
		return res, fmt.Errorf("start %s: %w", parts[0], err)
	}
	return res, nil
}
