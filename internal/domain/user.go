package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role names carried in access tokens.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"` // argon2id
	IsAdmin         bool       `json:"is_admin"`
	IsActive        bool       `json:"is_active"`
	CampusID        *uuid.UUID `json:"campus_id,omitempty"`
	College         string     `json:"college"`
	Position        string     `json:"position"`
	AvatarURL       string     `json:"avatar_url"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// userSignificantFields are the only fields whose change makes a user update
// worth recording.
var userSignificantFields = []string{ //nolint:gochecknoglobals // policy table
	"name",
	"email",
	"is_admin",
	"is_active",
	"campus_id",
	"college",
}

// NewUser creates an active, non-admin user. The password hash is set by the
// caller after hashing.
func NewUser(name, email string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, errors.New("user: name is required")
	}
	if !strings.Contains(email, "@") {
		return nil, errors.New("user: email is invalid")
	}
	now := time.Now()
	return &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Role returns the access role encoded in tokens.
func (u *User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Actor returns the acting identity for mutations performed by u.
func (u *User) Actor() *Actor {
	return &Actor{Kind: KindUser, ID: u.ID, Name: u.Name}
}

func (u *User) AuditRef() Ref      { return Ref{Kind: KindUser, ID: u.ID} }
func (u *User) AuditTitle() string { return u.Name }

func (u *User) AuditAttributes() Values {
	var campusID any
	if u.CampusID != nil {
		campusID = *u.CampusID
	}
	var verified any
	if u.EmailVerifiedAt != nil {
		verified = *u.EmailVerifiedAt
	}
	return Values{
		{"id", u.ID},
		{"name", u.Name},
		{"email", u.Email},
		{"password_hash", u.PasswordHash},
		{"is_admin", u.IsAdmin},
		{"is_active", u.IsActive},
		{"campus_id", campusID},
		{"college", u.College},
		{"position", u.Position},
		{"avatar_url", u.AvatarURL},
		{"email_verified_at", verified},
		{"created_at", u.CreatedAt},
		{"updated_at", u.UpdatedAt},
	}
}

// AuditSignificant records user updates only when an identity or access
// field changed. A user re-saving their own profile without touching one of
// those fields is therefore never recorded, and neither is an admin touching
// cosmetic fields of another account. Creation and deletion always count.
func (u *User) AuditSignificant(ev *ChangeEvent) bool {
	if ev.Action != AuditActionUpdate {
		return true
	}
	significant := ev.After.Intersects(userSignificantFields...)
	if ev.Actor.Is(ev.Subject) && !significant {
		return false
	}
	return significant
}

type UserRepository interface {
	Repository[*User]
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, error)
}
