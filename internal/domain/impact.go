package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ImpactAssessment measures the reach of a project after transfer.
type ImpactAssessment struct {
	Submission
	ProjectID          *uuid.UUID `json:"project_id,omitempty"`
	Title              string     `json:"title"`
	Beneficiary        string     `json:"beneficiary"`
	GeographicCoverage string     `json:"geographic_coverage"`
	NumBeneficiaries   int        `json:"num_beneficiaries"`
}

func NewImpactAssessment(userID, campusID uuid.UUID, college, title, beneficiary string, numBeneficiaries int) (*ImpactAssessment, error) {
	sub, err := newSubmission(userID, campusID, college)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, errors.New("impact assessment: title is required")
	}
	if numBeneficiaries < 0 {
		return nil, errors.New("impact assessment: number of beneficiaries must not be negative")
	}
	return &ImpactAssessment{
		Submission:       sub,
		Title:            title,
		Beneficiary:      beneficiary,
		NumBeneficiaries: numBeneficiaries,
	}, nil
}

func (a *ImpactAssessment) AuditRef() Ref      { return Ref{Kind: KindImpactAssessment, ID: a.ID} }
func (a *ImpactAssessment) AuditTitle() string { return a.Title }

func (a *ImpactAssessment) AuditAttributes() Values {
	var projectID any
	if a.ProjectID != nil {
		projectID = *a.ProjectID
	}
	return a.snapshot(
		Field{"project_id", projectID},
		Field{"title", a.Title},
		Field{"beneficiary", a.Beneficiary},
		Field{"geographic_coverage", a.GeographicCoverage},
		Field{"num_beneficiaries", a.NumBeneficiaries},
	)
}

type ImpactAssessmentRepository interface {
	Repository[*ImpactAssessment]
	List(ctx context.Context, filter ListFilter) ([]*ImpactAssessment, error)
}
