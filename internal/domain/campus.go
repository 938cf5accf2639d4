package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Campus is admin-managed reference data. Campuses are not audited.
type Campus struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Colleges  []string  `json:"colleges"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCampus(code, name string, colleges []string) (*Campus, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, errors.New("campus: code is required")
	}
	if name == "" {
		return nil, errors.New("campus: name is required")
	}
	if colleges == nil {
		colleges = []string{}
	}
	now := time.Now()
	return &Campus{
		ID:        uuid.New(),
		Code:      code,
		Name:      name,
		Colleges:  colleges,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// HasCollege reports whether college belongs to the campus.
func (c *Campus) HasCollege(college string) bool {
	for _, col := range c.Colleges {
		if strings.EqualFold(col, college) {
			return true
		}
	}
	return false
}

type CampusRepository interface {
	Create(ctx context.Context, c *Campus) error
	GetByID(ctx context.Context, id uuid.UUID) (*Campus, error)
	GetByCode(ctx context.Context, code string) (*Campus, error)
	Update(ctx context.Context, c *Campus) error
	List(ctx context.Context) ([]*Campus, error)
}
