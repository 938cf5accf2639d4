package v1

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/domain"
)

type ImpactAssessmentBody struct {
	Placement
	ProjectID          *uuid.UUID `json:"project_id,omitempty" doc:"Assessed project"`
	Title              string     `json:"title" minLength:"1" maxLength:"255" doc:"Assessment title"`
	Beneficiary        string     `json:"beneficiary,omitempty" maxLength:"255" doc:"Beneficiary group"`
	GeographicCoverage string     `json:"geographic_coverage,omitempty" maxLength:"255" doc:"Area covered"`
	NumBeneficiaries   int        `json:"num_beneficiaries" minimum:"0" doc:"Number of beneficiaries"`
}

func RegisterImpactAssessmentRoutes(api huma.API, store DataStore, auditor *audit.Auditor, verifier audit.CredentialVerifier) {
	registerSubmission(api, store, resource[*domain.ImpactAssessment, ImpactAssessmentBody]{
		noun:  "impact-assessment",
		path:  "/impact-assessments",
		tag:   "Impact assessments",
		repo:  store.ImpactAssessments(),
		place: func(b *ImpactAssessmentBody) Placement { return b.Placement },
		build: func(o owner, b *ImpactAssessmentBody) (*domain.ImpactAssessment, error) {
			a, err := domain.NewImpactAssessment(o.UserID, o.CampusID, o.College, b.Title, b.Beneficiary, b.NumBeneficiaries)
			if err != nil {
				return nil, err
			}
			a.ProjectID = b.ProjectID
			a.GeographicCoverage = b.GeographicCoverage
			return a, nil
		},
		apply: func(a *domain.ImpactAssessment, b *ImpactAssessmentBody, _ bool) error {
			a.ProjectID = b.ProjectID
			a.Title = b.Title
			a.Beneficiary = b.Beneficiary
			a.GeographicCoverage = b.GeographicCoverage
			a.NumBeneficiaries = b.NumBeneficiaries
			return nil
		},
	}, auditor, verifier)
}
