package v1

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/domain"
)

type ResolutionBody struct {
	Placement
	ResolutionNumber string `json:"resolution_number" minLength:"1" maxLength:"64" doc:"Board resolution number"`
	Title            string `json:"title" minLength:"1" maxLength:"255" doc:"Resolution title"`
	Effectivity      string `json:"effectivity" format:"date" doc:"Date the resolution takes effect"`
	Expiration       string `json:"expiration,omitempty" format:"date" doc:"Date the resolution lapses"`
}

func RegisterResolutionRoutes(api huma.API, store DataStore, auditor *audit.Auditor, verifier audit.CredentialVerifier) {
	registerSubmission(api, store, resource[*domain.Resolution, ResolutionBody]{
		noun:  "resolution",
		path:  "/resolutions",
		tag:   "Resolutions",
		repo:  store.Resolutions(),
		place: func(b *ResolutionBody) Placement { return b.Placement },
		build: func(o owner, b *ResolutionBody) (*domain.Resolution, error) {
			effective, err := parseDate("effectivity", b.Effectivity)
			if err != nil {
				return nil, err
			}
			r, err := domain.NewResolution(o.UserID, o.CampusID, o.College, b.ResolutionNumber, b.Title, effective)
			if err != nil {
				return nil, err
			}
			if r.Expiration, err = parseOptDate("expiration", b.Expiration); err != nil {
				return nil, err
			}
			return r, nil
		},
		apply: func(r *domain.Resolution, b *ResolutionBody, _ bool) error {
			effective, err := parseDate("effectivity", b.Effectivity)
			if err != nil {
				return err
			}
			expiration, err := parseOptDate("expiration", b.Expiration)
			if err != nil {
				return err
			}
			r.ResolutionNumber = b.ResolutionNumber
			r.Title = b.Title
			r.Effectivity = effective
			r.Expiration = expiration
			return nil
		},
	}, auditor, verifier)
}
