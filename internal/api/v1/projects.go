package v1

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/domain"
)

type ProjectBody struct {
	Placement
	Name        string  `json:"name" minLength:"1" maxLength:"255" doc:"Project name"`
	Description string  `json:"description,omitempty" doc:"Project description"`
	Category    string  `json:"category,omitempty" maxLength:"128" doc:"Project category"`
	Budget      float64 `json:"budget" minimum:"0" doc:"Approved budget"`
	Status      string  `json:"status,omitempty" enum:"pending,approved,rejected" doc:"Review status; admin only"`
	StartDate   string  `json:"start_date" format:"date" doc:"Start date"`
	EndDate     string  `json:"end_date,omitempty" format:"date" doc:"End date"`
}

func RegisterProjectRoutes(api huma.API, store DataStore, auditor *audit.Auditor, verifier audit.CredentialVerifier) {
	registerSubmission(api, store, resource[*domain.Project, ProjectBody]{
		noun:  "project",
		path:  "/projects",
		tag:   "Projects",
		repo:  store.Projects(),
		place: func(b *ProjectBody) Placement { return b.Placement },
		build: func(o owner, b *ProjectBody) (*domain.Project, error) {
			start, err := parseDate("start_date", b.StartDate)
			if err != nil {
				return nil, err
			}
			p, err := domain.NewProject(o.UserID, o.CampusID, o.College, b.Name, b.Category, b.Budget, start)
			if err != nil {
				return nil, err
			}
			p.Description = b.Description
			if p.EndDate, err = parseOptDate("end_date", b.EndDate); err != nil {
				return nil, err
			}
			return p, nil
		},
		apply: func(p *domain.Project, b *ProjectBody, admin bool) error {
			start, err := parseDate("start_date", b.StartDate)
			if err != nil {
				return err
			}
			end, err := parseOptDate("end_date", b.EndDate)
			if err != nil {
				return err
			}
			if b.Budget < 0 {
				return errors.New("budget must not be negative")
			}
			if b.Status != "" && domain.ProjectStatus(b.Status) != p.Status {
				if !admin {
					return errors.New("only admins may change the review status")
				}
				p.Status = domain.ProjectStatus(b.Status)
			}
			p.Name = b.Name
			p.Description = b.Description
			p.Category = b.Category
			p.Budget = b.Budget
			p.StartDate = start
			p.EndDate = end
			return nil
		},
	}, auditor, verifier)
}
