package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the review state of a submitted project.
type ProjectStatus string

const (
	ProjectStatusPending  ProjectStatus = "pending"
	ProjectStatusApproved ProjectStatus = "approved"
	ProjectStatusRejected ProjectStatus = "rejected"
)

// Valid reports whether s is a recognised review state.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPending, ProjectStatusApproved, ProjectStatusRejected:
		return true
	default:
		return false
	}
}

type Project struct {
	Submission
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Budget      float64       `json:"budget"`
	Status      ProjectStatus `json:"status"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
}

// NewProject creates a Project with validated required fields and defaults.
func NewProject(userID, campusID uuid.UUID, college, name, category string, budget float64, start time.Time) (*Project, error) {
	sub, err := newSubmission(userID, campusID, college)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.New("project: name is required")
	}
	if budget < 0 {
		return nil, errors.New("project: budget must not be negative")
	}
	if start.IsZero() {
		return nil, errors.New("project: start date is required")
	}
	return &Project{
		Submission: sub,
		Name:       name,
		Category:   category,
		Budget:     budget,
		Status:     ProjectStatusPending,
		StartDate:  start,
	}, nil
}

func (p *Project) AuditRef() Ref      { return Ref{Kind: KindProject, ID: p.ID} }
func (p *Project) AuditTitle() string { return p.Name }

func (p *Project) AuditAttributes() Values {
	return p.snapshot(
		Field{"name", p.Name},
		Field{"description", p.Description},
		Field{"category", p.Category},
		Field{"budget", p.Budget},
		Field{"status", string(p.Status)},
		Field{"start_date", dateValue(p.StartDate)},
		Field{"end_date", optDateValue(p.EndDate)},
	)
}

type ProjectRepository interface {
	Repository[*Project]
	List(ctx context.Context, filter ListFilter) ([]*Project, error)
}
