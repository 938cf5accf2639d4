package v1

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/domain"
)

type AwardBody struct {
	Placement
	Title        string `json:"title" minLength:"1" maxLength:"255" doc:"Award title"`
	AwardingBody string `json:"awarding_body" minLength:"1" maxLength:"255" doc:"Conferring organisation"`
	Level        string `json:"level" enum:"institutional,regional,national,international" doc:"Award level"`
	DateReceived string `json:"date_received" format:"date" doc:"Date received"`
}

func RegisterAwardRoutes(api huma.API, store DataStore, auditor *audit.Auditor, verifier audit.CredentialVerifier) {
	registerSubmission(api, store, resource[*domain.Award, AwardBody]{
		noun:  "award",
		path:  "/awards",
		tag:   "Awards",
		repo:  store.Awards(),
		place: func(b *AwardBody) Placement { return b.Placement },
		build: func(o owner, b *AwardBody) (*domain.Award, error) {
			received, err := parseDate("date_received", b.DateReceived)
			if err != nil {
				return nil, err
			}
			return domain.NewAward(o.UserID, o.CampusID, o.College, b.Title, b.AwardingBody, domain.AwardLevel(b.Level), received)
		},
		apply: func(a *domain.Award, b *AwardBody, _ bool) error {
			received, err := parseDate("date_received", b.DateReceived)
			if err != nil {
				return err
			}
			if level := domain.AwardLevel(b.Level); !level.Valid() {
				return errors.New("unknown award level")
			}
			a.Title = b.Title
			a.AwardingBody = b.AwardingBody
			a.Level = domain.AwardLevel(b.Level)
			a.DateReceived = received
			return nil
		},
	}, auditor, verifier)
}
