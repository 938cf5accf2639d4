package v1

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/domain"
)

type ModalityBody struct {
	Placement
	Title         string `json:"title" minLength:"1" maxLength:"255" doc:"Modality title"`
	ModalityType  string `json:"modality_type" enum:"tv,radio,online,print,forum,tech_fair,other" doc:"Dissemination channel"`
	PartnerAgency string `json:"partner_agency,omitempty" maxLength:"255" doc:"Partner agency"`
	HostedBy      string `json:"hosted_by,omitempty" maxLength:"255" doc:"Host"`
	Period        string `json:"period,omitempty" maxLength:"128" doc:"Period covered"`
}

func RegisterModalityRoutes(api huma.API, store DataStore, auditor *audit.Auditor, verifier audit.CredentialVerifier) {
	registerSubmission(api, store, resource[*domain.Modality, ModalityBody]{
		noun:  "modality",
		path:  "/modalities",
		tag:   "Modalities",
		repo:  store.Modalities(),
		place: func(b *ModalityBody) Placement { return b.Placement },
		build: func(o owner, b *ModalityBody) (*domain.Modality, error) {
			m, err := domain.NewModality(o.UserID, o.CampusID, o.College, b.Title, domain.ModalityType(b.ModalityType), b.HostedBy, b.Period)
			if err != nil {
				return nil, err
			}
			m.PartnerAgency = b.PartnerAgency
			return m, nil
		},
		apply: func(m *domain.Modality, b *ModalityBody, _ bool) error {
			if typ := domain.ModalityType(b.ModalityType); !typ.Valid() {
				return errors.New("unknown modality type")
			}
			m.Title = b.Title
			m.ModalityType = domain.ModalityType(b.ModalityType)
			m.PartnerAgency = b.PartnerAgency
			m.HostedBy = b.HostedBy
			m.Period = b.Period
			return nil
		},
	}, auditor, verifier)
}
