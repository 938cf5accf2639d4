package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Repository is the persistence surface every auditable entity shares.
type Repository[T any] interface {
	Create(ctx context.Context, e T) error
	GetByID(ctx context.Context, id uuid.UUID) (T, error)
	Update(ctx context.Context, e T) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListFilter narrows submission listings. A nil OwnerID or CampusID means no
// restriction on that column.
type ListFilter struct {
	OwnerID         *uuid.UUID
	CampusID        *uuid.UUID
	IncludeArchived bool
	Limit           int
	Offset          int
}

// Submission holds the columns shared by every staff-submitted record.
type Submission struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CampusID  uuid.UUID `json:"campus_id"`
	College   string    `json:"college"`
	Archived  bool      `json:"is_archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newSubmission(userID, campusID uuid.UUID, college string) (Submission, error) {
	if userID == uuid.Nil {
		return Submission{}, errors.New("submission: user ID is required")
	}
	if campusID == uuid.Nil {
		return Submission{}, errors.New("submission: campus ID is required")
	}
	now := time.Now()
	return Submission{
		ID:        uuid.New(),
		UserID:    userID,
		CampusID:  campusID,
		College:   college,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Submission) IsArchived() bool          { return s.Archived }
func (s *Submission) SetArchived(archived bool) { s.Archived = archived }

// OwnedBy reports whether userID submitted the record.
func (s *Submission) OwnedBy(userID uuid.UUID) bool { return s.UserID == userID }

// MoveTo reassigns the record to another campus and college.
func (s *Submission) MoveTo(campusID uuid.UUID, college string) {
	s.CampusID = campusID
	s.College = college
}

// snapshot wraps fields with the shared ownership and bookkeeping columns.
func (s *Submission) snapshot(fields ...Field) Values {
	v := make(Values, 0, len(fields)+7)
	v = append(v,
		Field{"id", s.ID},
		Field{"user_id", s.UserID},
		Field{"campus_id", s.CampusID},
		Field{"college", s.College},
	)
	v = append(v, fields...)
	return append(v,
		Field{ArchivedField, s.Archived},
		Field{"created_at", s.CreatedAt},
		Field{"updated_at", s.UpdatedAt},
	)
}

func dateValue(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}

func optDateValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return dateValue(*t)
}
