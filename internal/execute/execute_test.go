package execute

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRunCapturesStdout(t *testing.T) {
	var r Runner
	res, err := r.Run(context.Background(), "echo hello world", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(res.Stdout); got != "hello world" {
		t.Fatalf("stdout = %q; want %q", got, "hello world")
	}
}

func TestRunEmptyCommand(t *testing.T) {
	var r Runner
	for _, command := range []string{"", "   ", "\t"} {
		if _, err := r.Run(context.Background(), command, "."); !errors.Is(err, ErrEmptyCommand) {
			t.Errorf("Run(%q) error = %v; want ErrEmptyCommand", command, err)
		}
	}
}

func TestRunNonZeroExit(t *testing.T) {
	var r Runner
	_, err := r.Run(context.Background(), "false", ".")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v; want *ExitError", err)
	}
	if exitErr.Program != "false" || exitErr.Code == 0 {
		t.Fatalf("unexpected exit error: %+v", exitErr)
	}
}

func TestRunSpawnError(t *testing.T) {
	var r Runner
	_, err := r.Run(context.Background(), "definitely-not-a-program-xyz", ".")
	if err == nil {
		t.Fatal("expected spawn error")
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Fatalf("spawn failure reported as exit error: %v", err)
	}
}

func TestRunTimeout(t *testing.T) {
	r := Runner{Timeout: 50 * time.Millisecond}
	start := time.Now()
	_, err := r.Run(context.Background(), "sleep 5", ".")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("command was not interrupted, took %v", elapsed)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v; want context.DeadlineExceeded", err)
	}
}
