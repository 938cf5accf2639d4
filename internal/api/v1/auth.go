package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/auth"
	"github.com/gosuda/techtransfer/internal/domain"
)

type RegisterInput struct {
	Body struct {
		Name     string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"User email"`
		Password string `json:"password" minLength:"8" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type RegisterOutput struct {
	Body struct {
		User         *domain.User `json:"user"`
		AccessToken  string       `json:"access_token"`  //nolint:gosec // G117: auth response DTO
		RefreshToken string       `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
	}
}

type LoginInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"User email"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type LoginOutput struct {
	Body struct {
		AccessToken  string `json:"access_token"`  //nolint:gosec // G117: auth response DTO
		RefreshToken string `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
	}
}

type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" minLength:"1" doc:"Refresh token"` //nolint:gosec // G117: token refresh DTO
	}
}

type RefreshOutput struct {
	Body struct {
		AccessToken string `json:"access_token"` //nolint:gosec // G117: auth response DTO
	}
}

// RegisterAuthRoutes registers the unauthenticated auth endpoints.
func RegisterAuthRoutes(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/auth/register",
		Summary:     "Register a new user",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
		user, err := authSvc.Register(ctx, input.Body.Name, input.Body.Email, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrUserAlreadyExists) {
				return nil, huma.Error409Conflict("user already exists")
			}
			return nil, mapError(err, "user")
		}

		accessToken, refreshToken, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, huma.Error500InternalServerError("registered but failed to issue tokens", err)
		}

		user.PasswordHash = ""

		out := &RegisterOutput{}
		out.Body.User = user
		out.Body.AccessToken = accessToken
		out.Body.RefreshToken = refreshToken
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Login with email and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		accessToken, refreshToken, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return nil, huma.Error401Unauthorized("invalid email or password")
			}
			return nil, huma.Error500InternalServerError("login failed", err)
		}

		out := &LoginOutput{}
		out.Body.AccessToken = accessToken
		out.Body.RefreshToken = refreshToken
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-token",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Refresh access token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
		accessToken, err := authSvc.RefreshToken(ctx, input.Body.RefreshToken)
		if err != nil {
			return nil, huma.Error401Unauthorized("invalid or expired refresh token")
		}

		out := &RefreshOutput{}
		out.Body.AccessToken = accessToken
		return out, nil
	})
}

type UserOutput struct {
	Body *domain.User
}

type UpdateProfileInput struct {
	Body struct {
		Name      string     `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Position  string     `json:"position,omitempty" maxLength:"255" doc:"Position or designation"`
		AvatarURL string     `json:"avatar_url,omitempty" maxLength:"2048" doc:"Avatar image URL"`
		CampusID  *uuid.UUID `json:"campus_id,omitempty" doc:"Home campus"`
		College   string     `json:"college,omitempty" maxLength:"255" doc:"Home college"`
	}
}

type ChangePasswordInput struct {
	Body struct {
		CurrentPassword string `json:"current_password" minLength:"1" maxLength:"128" doc:"Current password"` //nolint:gosec // G117: credential DTO
		NewPassword     string `json:"new_password" minLength:"8" maxLength:"128" doc:"New password"`         //nolint:gosec // G117: credential DTO
	}
}

// RegisterSessionRoutes registers the endpoints that act on the caller's own
// account. They require an authenticated request.
func RegisterSessionRoutes(api huma.API, store DataStore, authSvc AuthService, auditor *audit.Auditor, names *audit.ActorNames) {
	users := audit.Track[*domain.User](auditor, store.Users())

	huma.Register(api, huma.Operation{
		OperationID:   "logout",
		Method:        http.MethodPost,
		Path:          "/auth/logout",
		Summary:       "Logout",
		Description:   "Records the logout in the audit trail. Tokens expire on their own.",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		actor, err := currentActor(ctx)
		if err != nil {
			return nil, err
		}
		if err := authSvc.Logout(ctx, actor.ID); err != nil {
			return nil, mapError(err, "user")
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-me",
		Method:      http.MethodGet,
		Path:        "/me",
		Summary:     "Get the current user",
		Tags:        []string{"Profile"},
	}, func(ctx context.Context, _ *struct{}) (*UserOutput, error) {
		actor, err := currentActor(ctx)
		if err != nil {
			return nil, err
		}
		u, err := store.Users().GetByID(ctx, actor.ID)
		if err != nil {
			return nil, mapError(err, "user")
		}
		return &UserOutput{Body: u}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-me",
		Method:      http.MethodPut,
		Path:        "/me",
		Summary:     "Update the current user's profile",
		Tags:        []string{"Profile"},
	}, func(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
		actor, err := currentActor(ctx)
		if err != nil {
			return nil, err
		}
		u, err := store.Users().GetByID(ctx, actor.ID)
		if err != nil {
			return nil, mapError(err, "user")
		}

		if input.Body.CampusID != nil {
			if err := checkCampus(ctx, store, *input.Body.CampusID, input.Body.College); err != nil {
				return nil, err
			}
		}

		u.Name = input.Body.Name
		u.Position = input.Body.Position
		u.AvatarURL = input.Body.AvatarURL
		u.CampusID = input.Body.CampusID
		u.College = input.Body.College

		if err := users.Update(ctx, actor, u); err != nil {
			return nil, mapError(err, "user")
		}
		if names != nil {
			names.Forget(u.AuditRef())
		}
		return &UserOutput{Body: u}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "change-password",
		Method:        http.MethodPut,
		Path:          "/me/password",
		Summary:       "Change the current user's password",
		Tags:          []string{"Profile"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *ChangePasswordInput) (*struct{}, error) {
		actor, err := currentActor(ctx)
		if err != nil {
			return nil, err
		}
		if err := authSvc.ChangePassword(ctx, actor.ID, input.Body.CurrentPassword, input.Body.NewPassword); err != nil {
			return nil, mapError(err, "user")
		}
		return nil, nil
	})
}

// checkCampus verifies that the campus exists and, when college is set,
// offers it.
func checkCampus(ctx context.Context, store DataStore, campusID uuid.UUID, college string) error {
	campus, err := store.Campuses().GetByID(ctx, campusID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return huma.Error422UnprocessableEntity("unknown campus")
		}
		return mapError(err, "campus")
	}
	if college != "" && len(campus.Colleges) > 0 && !campus.HasCollege(college) {
		return huma.Error422UnprocessableEntity("college " + college + " does not belong to campus " + campus.Code)
	}
	return nil
}
