package entity

import "time"

type DeploymentStatus string

const (
	DeploymentStatusPending    DeploymentStatus = "pending"
	DeploymentStatusRunning    DeploymentStatus = "running"
	DeploymentStatusSuccess    DeploymentStatus = "success"
	DeploymentStatusFailed     DeploymentStatus = "failed"
	DeploymentStatusRolledBack DeploymentStatus = "rolled_back"
)

// Deployment is one recorded pipeline run for a commit.
type Deployment struct {
	ID        ID               `json:"id"`
	CommitSHA string           `json:"commit_sha"`
	Branch    string           `json:"branch"`
	Status    DeploymentStatus `json:"status"`
	Stage     string           `json:"stage"`
	Message   string           `json:"message"`
	IsActive  bool             `json:"is_active"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
