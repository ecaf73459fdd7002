package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lipish/postloop/internal/config"
	"github.com/lipish/postloop/internal/versions"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T) (*Server, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Watch.RepoPath = t.TempDir()
	cfg.Deploy.TargetDir = t.TempDir()
	return New(&Config{
		App:         cfg,
		Port:        0,
		Logger:      zerolog.Nop(),
		HistoryPath: ":memory:",
	}), cfg
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
}

func TestListVersions(t *testing.T) {
	s, cfg := newTestServer(t)

	for i, label := range []string{"v1", "v2"} {
		dir := filepath.Join(cfg.Deploy.TargetDir, label)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		mtime := time.Now().Add(-time.Duration(2-i) * time.Hour)
		if err := os.Chtimes(dir, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}
	if err := (versions.Store{Root: cfg.Deploy.TargetDir}).SetCurrent("v2"); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/versions", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}

	var body struct {
		Versions []struct {
			Label   string `json:"label"`
			Current bool   `json:"current"`
		} `json:"versions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Versions) != 2 {
		t.Fatalf("versions = %+v; want 2 entries", body.Versions)
	}
	if body.Versions[0].Label != "v2" || !body.Versions[0].Current {
		t.Fatalf("first entry = %+v; want current v2", body.Versions[0])
	}
}

func TestListDeploymentsEmpty(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/deployments", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}

	var body struct {
		Deployments []any `json:"deployments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Deployments) != 0 {
		t.Fatalf("deployments = %v; want none", body.Deployments)
	}
}
