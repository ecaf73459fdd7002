package githook

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lipish/postloop/internal/execute"
)

func TestIsRepo(t *testing.T) {
	dir := t.TempDir()
	if IsRepo(dir) {
		t.Fatal("IsRepo = true for plain directory")
	}
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if !IsRepo(dir) {
		t.Fatal("IsRepo = false for directory with .git")
	}
}

func TestInstallAndDetect(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if IsInstalled(dir) {
		t.Fatal("IsInstalled = true before install")
	}

	ctx := context.Background()
	if err := Install(ctx, dir); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !IsInstalled(dir) {
		t.Fatal("IsInstalled = false after install")
	}

	info, err := os.Stat(filepath.Join(dir, ".git", "hooks", "post-commit"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Fatal("hook script is not executable")
	}

	// reinstall is idempotent
	if err := Install(ctx, dir); err != nil {
		t.Fatalf("second Install: %v", err)
	}
}

func TestInstalledIgnoresForeignHook(t *testing.T) {
	dir := t.TempDir()
	hooks := filepath.Join(dir, ".git", "hooks")
	if err := os.MkdirAll(hooks, 0o755); err != nil {
		t.Fatal(err)
	}
	script := "#!/bin/sh\nmake lint\n"
	if err := os.WriteFile(filepath.Join(hooks, "post-commit"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	if IsInstalled(dir) {
		t.Fatal("foreign hook detected as ours")
	}
}

func TestShortHash(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	var runner execute.Runner

	run := func(command string) {
		t.Helper()
		if _, err := runner.Run(ctx, command, dir); err != nil {
			t.Fatalf("%s: %v", command, err)
		}
	}
	run("git init")
	run("git -c user.email=test@test -c user.name=test commit --allow-empty -m initial")

	hash, err := ShortHash(ctx, runner, dir)
	if err != nil {
		t.Fatalf("ShortHash: %v", err)
	}
	if len(hash) < 4 || len(hash) > 40 {
		t.Fatalf("unexpected hash %q", hash)
	}
}
