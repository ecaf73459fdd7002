package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lipish/postloop/internal/execute"
)

func TestRunSuccess(t *testing.T) {
	e := Executor{}
	if err := e.Run(context.Background(), "true", t.TempDir()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunFailureCarriesStderr(t *testing.T) {
	e := Executor{}
	err := e.Run(context.Background(), "ls /definitely-missing-path-xyz", t.TempDir())
	if err == nil {
		t.Fatal("expected build failure")
	}
	var exitErr *execute.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v; want wrapped *execute.ExitError", err)
	}
}

func TestVerifyArtifacts(t *testing.T) {
	repo := t.TempDir()
	if err := os.MkdirAll(filepath.Join(repo, "bin"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(repo, "bin", "app"), []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}

	e := Executor{}
	ctx := context.Background()

	if err := e.VerifyArtifacts(ctx, repo, []string{"bin/app"}); err != nil {
		t.Fatalf("VerifyArtifacts: %v", err)
	}

	err := e.VerifyArtifacts(ctx, repo, []string{"bin/app", "bin/missing"})
	if !errors.Is(err, ErrArtifactMissing) {
		t.Fatalf("error = %v; want ErrArtifactMissing", err)
	}

	// empty list verifies trivially
	if err := e.VerifyArtifacts(ctx, repo, nil); err != nil {
		t.Fatalf("VerifyArtifacts(nil): %v", err)
	}
}
