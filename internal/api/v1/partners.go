package v1

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/domain"
)

type InternationalPartnerBody struct {
	Placement
	AgencyPartner     string `json:"agency_partner" minLength:"1" maxLength:"255" doc:"Partner agency"`
	Location          string `json:"location" minLength:"1" maxLength:"255" doc:"Partner location"`
	ActivityConducted string `json:"activity_conducted,omitempty" doc:"Activity conducted with the partner"`
	StartDate         string `json:"start_date" format:"date" doc:"Start of the partnership"`
	EndDate           string `json:"end_date,omitempty" format:"date" doc:"End of the partnership"`
}

func RegisterInternationalPartnerRoutes(api huma.API, store DataStore, auditor *audit.Auditor, verifier audit.CredentialVerifier) {
	registerSubmission(api, store, resource[*domain.InternationalPartner, InternationalPartnerBody]{
		noun:  "international-partner",
		path:  "/international-partners",
		tag:   "International partners",
		repo:  store.InternationalPartners(),
		place: func(b *InternationalPartnerBody) Placement { return b.Placement },
		build: func(o owner, b *InternationalPartnerBody) (*domain.InternationalPartner, error) {
			start, err := parseDate("start_date", b.StartDate)
			if err != nil {
				return nil, err
			}
			p, err := domain.NewInternationalPartner(o.UserID, o.CampusID, o.College, b.AgencyPartner, b.Location, b.ActivityConducted, start)
			if err != nil {
				return nil, err
			}
			if p.EndDate, err = parseOptDate("end_date", b.EndDate); err != nil {
				return nil, err
			}
			return p, nil
		},
		apply: func(p *domain.InternationalPartner, b *InternationalPartnerBody, _ bool) error {
			start, err := parseDate("start_date", b.StartDate)
			if err != nil {
				return err
			}
			end, err := parseOptDate("end_date", b.EndDate)
			if err != nil {
				return err
			}
			p.AgencyPartner = b.AgencyPartner
			p.Location = b.Location
			p.ActivityConducted = b.ActivityConducted
			p.StartDate = start
			p.EndDate = end
			return nil
		},
	}, auditor, verifier)
}
