package history

import (
	"context"
	"errors"
	"testing"

	"github.com/lipish/postloop/internal/entity"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return NewStore(db)
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, &entity.Deployment{
		CommitSHA: "abc123",
		Branch:    "main",
		Status:    entity.DeploymentStatusRunning,
		Stage:     "build",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created record has no ID")
	}

	got, err := s.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CommitSHA != "abc123" || got.Status != entity.DeploymentStatusRunning {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetByID(context.Background(), entity.NewID(uint(999))); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("error = %v; want entity.ErrNotFound", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dep, err := s.Create(ctx, &entity.Deployment{CommitSHA: "abc123", Status: entity.DeploymentStatusRunning})
	if err != nil {
		t.Fatal(err)
	}

	dep.Status = entity.DeploymentStatusFailed
	dep.Stage = "deploy"
	dep.Message = "deploy: exit status 1"
	updated, err := s.Update(ctx, dep)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != entity.DeploymentStatusFailed || updated.Stage != "deploy" {
		t.Fatalf("unexpected record after update: %+v", updated)
	}
}

func TestMarkActiveIsExclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, _ := s.Create(ctx, &entity.Deployment{CommitSHA: "v1", Status: entity.DeploymentStatusSuccess, IsActive: true})
	second, _ := s.Create(ctx, &entity.Deployment{CommitSHA: "v2", Status: entity.DeploymentStatusSuccess})

	if err := s.MarkActive(ctx, second.ID); err != nil {
		t.Fatalf("MarkActive: %v", err)
	}

	got1, _ := s.GetByID(ctx, first.ID)
	got2, _ := s.GetByID(ctx, second.ID)
	if got1.IsActive {
		t.Fatal("previous deployment still active")
	}
	if !got2.IsActive {
		t.Fatal("new deployment not active")
	}
}

func TestListRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, sha := range []string{"v1", "v2", "v3"} {
		if _, err := s.Create(ctx, &entity.Deployment{CommitSHA: sha, Status: entity.DeploymentStatusSuccess}); err != nil {
			t.Fatal(err)
		}
	}

	deps, err := s.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(deps) != 2 {
		t.Fatalf("len = %d; want 2", len(deps))
	}

	all, err := s.ListRecent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d; want 3", len(all))
	}
}

func TestRecorderLifecycle(t *testing.T) {
	s := newTestStore(t)
	r := NewRecorder(s)
	ctx := context.Background()

	dep, err := r.Begin(ctx, "abc123", "main")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if dep.Status != entity.DeploymentStatusRunning {
		t.Fatalf("status = %s; want running", dep.Status)
	}

	if err := r.Complete(ctx, dep, entity.DeploymentStatusSuccess, "done", ""); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	got, _ := s.GetByID(ctx, dep.ID)
	if got.Status != entity.DeploymentStatusSuccess || !got.IsActive {
		t.Fatalf("unexpected record: %+v", got)
	}
}
