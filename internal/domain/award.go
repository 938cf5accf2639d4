package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// AwardLevel is the scope at which an award was conferred.
type AwardLevel string

const (
	AwardLevelInstitutional AwardLevel = "institutional"
	AwardLevelRegional      AwardLevel = "regional"
	AwardLevelNational      AwardLevel = "national"
	AwardLevelInternational AwardLevel = "international"
)

func (l AwardLevel) Valid() bool {
	switch l {
	case AwardLevelInstitutional, AwardLevelRegional, AwardLevelNational, AwardLevelInternational:
		return true
	default:
		return false
	}
}

type Award struct {
	Submission
	Title        string     `json:"title"`
	AwardingBody string     `json:"awarding_body"`
	Level        AwardLevel `json:"level"`
	DateReceived time.Time  `json:"date_received"`
}

func NewAward(userID, campusID uuid.UUID, college, title, awardingBody string, level AwardLevel, received time.Time) (*Award, error) {
	sub, err := newSubmission(userID, campusID, college)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, errors.New("award: title is required")
	}
	if awardingBody == "" {
		return nil, errors.New("award: awarding body is required")
	}
	if !level.Valid() {
		return nil, errors.New("award: level must be institutional, regional, national, or international")
	}
	if received.IsZero() {
		return nil, errors.New("award: date received is required")
	}
	return &Award{
		Submission:   sub,
		Title:        title,
		AwardingBody: awardingBody,
		Level:        level,
		DateReceived: received,
	}, nil
}

func (a *Award) AuditRef() Ref      { return Ref{Kind: KindAward, ID: a.ID} }
func (a *Award) AuditTitle() string { return a.Title }

func (a *Award) AuditAttributes() Values {
	return a.snapshot(
		Field{"title", a.Title},
		Field{"awarding_body", a.AwardingBody},
		Field{"level", string(a.Level)},
		Field{"date_received", dateValue(a.DateReceived)},
	)
}

type AwardRepository interface {
	Repository[*Award]
	List(ctx context.Context, filter ListFilter) ([]*Award, error)
}
