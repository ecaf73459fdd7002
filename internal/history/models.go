package history

import (
	"github.com/lipish/postloop/internal/entity"
	"gorm.io/gorm"
)

type Deployment struct {
	gorm.Model
	CommitSHA string
	Branch    string
	Status    string
	Stage     string
	Message   string
	IsActive  bool
}

func (d *Deployment) ToEntity() *entity.Deployment {
	return &entity.Deployment{
		ID:        entity.NewID(d.ID),
		CommitSHA: d.CommitSHA,
		Branch:    d.Branch,
		Status:    entity.DeploymentStatus(d.Status),
		Stage:     d.Stage,
		Message:   d.Message,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d *Deployment) FromEntity(e *entity.Deployment) {
	if e.ID != "" {
		d.ID = e.ID.Uint()
	}
	d.CommitSHA = e.CommitSHA
	d.Branch = e.Branch
	d.Status = string(e.Status)
	d.Stage = e.Stage
	d.Message = e.Message
	d.IsActive = e.IsActive
}
