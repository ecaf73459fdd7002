package history

import (
	"context"

	"github.com/lipish/postloop/internal/entity"
)

// Recorder tracks a pipeline run through the history store.
type Recorder struct {
	store Store
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Begin records the run as running and returns the persisted record.
func (r *Recorder) Begin(ctx context.Context, commit, branch string) (*entity.Deployment, error) {
	return r.store.Create(ctx, &entity.Deployment{
		CommitSHA: commit,
		Branch:    branch,
		Status:    entity.DeploymentStatusRunning,
		Stage:     "build",
	})
}

// Complete records the terminal status of the run. Successful runs become
// the active deployment.
func (r *Recorder) Complete(ctx context.Context, dep *entity.Deployment, status entity.DeploymentStatus, stage, message string) error {
	dep.Status = status
	dep.Stage = stage
	dep.Message = message
	dep.IsActive = status == entity.DeploymentStatusSuccess
	if _, err := r.store.Update(ctx, dep); err != nil {
		return err
	}
	if dep.IsActive {
		return r.store.MarkActive(ctx, dep.ID)
	}
	return nil
}
