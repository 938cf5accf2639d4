package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ModalityType is the channel a technology was disseminated through.
type ModalityType string

const (
	ModalityTV        ModalityType = "tv"
	ModalityRadio     ModalityType = "radio"
	ModalityOnline    ModalityType = "online"
	ModalityPrint     ModalityType = "print"
	ModalityForum     ModalityType = "forum"
	ModalityTechFair  ModalityType = "tech_fair"
	ModalityOtherType ModalityType = "other"
)

func (t ModalityType) Valid() bool {
	switch t {
	case ModalityTV, ModalityRadio, ModalityOnline, ModalityPrint, ModalityForum, ModalityTechFair, ModalityOtherType:
		return true
	default:
		return false
	}
}

type Modality struct {
	Submission
	Title         string       `json:"title"`
	ModalityType  ModalityType `json:"modality_type"`
	PartnerAgency string       `json:"partner_agency"`
	HostedBy      string       `json:"hosted_by"`
	Period        string       `json:"period"`
}

func NewModality(userID, campusID uuid.UUID, college, title string, typ ModalityType, hostedBy, period string) (*Modality, error) {
	sub, err := newSubmission(userID, campusID, college)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, errors.New("modality: title is required")
	}
	if !typ.Valid() {
		return nil, errors.New("modality: unknown modality type")
	}
	return &Modality{
		Submission:   sub,
		Title:        title,
		ModalityType: typ,
		HostedBy:     hostedBy,
		Period:       period,
	}, nil
}

func (m *Modality) AuditRef() Ref      { return Ref{Kind: KindModality, ID: m.ID} }
func (m *Modality) AuditTitle() string { return m.Title }

func (m *Modality) AuditAttributes() Values {
	return m.snapshot(
		Field{"title", m.Title},
		Field{"modality_type", string(m.ModalityType)},
		Field{"partner_agency", m.PartnerAgency},
		Field{"hosted_by", m.HostedBy},
		Field{"period", m.Period},
	)
}

type ModalityRepository interface {
	Repository[*Modality]
	List(ctx context.Context, filter ListFilter) ([]*Modality, error)
}
