package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Resolution is a board resolution backing a technology-transfer activity.
type Resolution struct {
	Submission
	ResolutionNumber string     `json:"resolution_number"`
	Title            string     `json:"title"`
	Effectivity      time.Time  `json:"effectivity"`
	Expiration       *time.Time `json:"expiration,omitempty"`
}

func NewResolution(userID, campusID uuid.UUID, college, number, title string, effectivity time.Time) (*Resolution, error) {
	sub, err := newSubmission(userID, campusID, college)
	if err != nil {
		return nil, err
	}
	if number == "" {
		return nil, errors.New("resolution: resolution number is required")
	}
	if title == "" {
		return nil, errors.New("resolution: title is required")
	}
	if effectivity.IsZero() {
		return nil, errors.New("resolution: effectivity date is required")
	}
	return &Resolution{
		Submission:       sub,
		ResolutionNumber: number,
		Title:            title,
		Effectivity:      effectivity,
	}, nil
}

func (r *Resolution) AuditRef() Ref { return Ref{Kind: KindResolution, ID: r.ID} }

func (r *Resolution) AuditTitle() string {
	return r.ResolutionNumber + " " + r.Title
}

func (r *Resolution) AuditAttributes() Values {
	return r.snapshot(
		Field{"resolution_number", r.ResolutionNumber},
		Field{"title", r.Title},
		Field{"effectivity", dateValue(r.Effectivity)},
		Field{"expiration", optDateValue(r.Expiration)},
	)
}

type ResolutionRepository interface {
	Repository[*Resolution]
	List(ctx context.Context, filter ListFilter) ([]*Resolution, error)
}
