package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// InternationalPartner records a linkage with a foreign agency.
type InternationalPartner struct {
	Submission
	AgencyPartner     string     `json:"agency_partner"`
	Location          string     `json:"location"`
	ActivityConducted string     `json:"activity_conducted"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           *time.Time `json:"end_date,omitempty"`
}

func NewInternationalPartner(userID, campusID uuid.UUID, college, agency, location, activity string, start time.Time) (*InternationalPartner, error) {
	sub, err := newSubmission(userID, campusID, college)
	if err != nil {
		return nil, err
	}
	if agency == "" {
		return nil, errors.New("international partner: agency partner is required")
	}
	if location == "" {
		return nil, errors.New("international partner: location is required")
	}
	if start.IsZero() {
		return nil, errors.New("international partner: start date is required")
	}
	return &InternationalPartner{
		Submission:        sub,
		AgencyPartner:     agency,
		Location:          location,
		ActivityConducted: activity,
		StartDate:         start,
	}, nil
}

func (p *InternationalPartner) AuditRef() Ref      { return Ref{Kind: KindInternationalPartner, ID: p.ID} }
func (p *InternationalPartner) AuditTitle() string { return p.AgencyPartner }

func (p *InternationalPartner) AuditAttributes() Values {
	return p.snapshot(
		Field{"agency_partner", p.AgencyPartner},
		Field{"location", p.Location},
		Field{"activity_conducted", p.ActivityConducted},
		Field{"start_date", dateValue(p.StartDate)},
		Field{"end_date", optDateValue(p.EndDate)},
	)
}

type InternationalPartnerRepository interface {
	Repository[*InternationalPartner]
	List(ctx context.Context, filter ListFilter) ([]*InternationalPartner, error)
}
