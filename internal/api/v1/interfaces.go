package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/techtransfer/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Campuses() domain.CampusRepository
	Users() domain.UserRepository
	Projects() domain.ProjectRepository
	Awards() domain.AwardRepository
	InternationalPartners() domain.InternationalPartnerRepository
	Modalities() domain.ModalityRepository
	Resolutions() domain.ResolutionRepository
	ImpactAssessments() domain.ImpactAssessmentRepository
	Audit() domain.AuditRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	Logout(ctx context.Context, userID uuid.UUID) error
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	VerifyPassword(ctx context.Context, userID uuid.UUID, password string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
}
