package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/domain"
)

type ListUsersInput struct {
	Limit  int `query:"limit" minimum:"1" maximum:"500" default:"50" doc:"Page size"`
	Offset int `query:"offset" minimum:"0" doc:"Page offset"`
}

type ListUsersOutput struct {
	Body []*domain.User
}

type UserIDInput struct {
	ID uuid.UUID `path:"id" doc:"User ID"`
}

type UpdateUserInput struct {
	ID   uuid.UUID `path:"id" doc:"User ID"`
	Body struct {
		Name     string     `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Position string     `json:"position,omitempty" maxLength:"255" doc:"Position or designation"`
		CampusID *uuid.UUID `json:"campus_id,omitempty" doc:"Home campus"`
		College  string     `json:"college,omitempty" maxLength:"255" doc:"Home college"`
		IsAdmin  bool       `json:"is_admin" doc:"Grant the admin role"`
		IsActive bool       `json:"is_active" doc:"Allow the account to sign in"`
	}
}

// RegisterUserRoutes registers admin account management. Every mutation is
// recorded against the acting admin.
func RegisterUserRoutes(api huma.API, store DataStore, auditor *audit.Auditor, names *audit.ActorNames) {
	users := audit.Track[*domain.User](auditor, store.Users())

	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List users",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
		if err := requireAdmin(ctx); err != nil {
			return nil, err
		}
		list, err := store.Users().List(ctx, input.Limit, input.Offset)
		if err != nil {
			return nil, mapError(err, "users")
		}
		return &ListUsersOutput{Body: list}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/users/{id}",
		Summary:     "Get a user by ID",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *UserIDInput) (*UserOutput, error) {
		if err := requireAdmin(ctx); err != nil {
			return nil, err
		}
		u, err := store.Users().GetByID(ctx, input.ID)
		if err != nil {
			return nil, mapError(err, "user")
		}
		return &UserOutput{Body: u}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-user",
		Method:      http.MethodPut,
		Path:        "/users/{id}",
		Summary:     "Update a user",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *UpdateUserInput) (*UserOutput, error) {
		if err := requireAdmin(ctx); err != nil {
			return nil, err
		}
		actor, err := currentActor(ctx)
		if err != nil {
			return nil, err
		}

		u, err := store.Users().GetByID(ctx, input.ID)
		if err != nil {
			return nil, mapError(err, "user")
		}
		if u.ID == actor.ID && (!input.Body.IsAdmin || !input.Body.IsActive) {
			return nil, huma.Error409Conflict("admins cannot demote or deactivate themselves")
		}
		if input.Body.CampusID != nil {
			if err := checkCampus(ctx, store, *input.Body.CampusID, input.Body.College); err != nil {
				return nil, err
			}
		}

		u.Name = input.Body.Name
		u.Position = input.Body.Position
		u.CampusID = input.Body.CampusID
		u.College = input.Body.College
		u.IsAdmin = input.Body.IsAdmin
		u.IsActive = input.Body.IsActive

		if err := users.Update(ctx, actor, u); err != nil {
			return nil, mapError(err, "user")
		}
		if names != nil {
			names.Forget(u.AuditRef())
		}
		return &UserOutput{Body: u}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-user",
		Method:      http.MethodDelete,
		Path:        "/users/{id}",
		Summary:     "Delete a user",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *UserIDInput) (*struct{}, error) {
		if err := requireAdmin(ctx); err != nil {
			return nil, err
		}
		actor, err := currentActor(ctx)
		if err != nil {
			return nil, err
		}
		if input.ID == actor.ID {
			return nil, huma.Error409Conflict("admins cannot delete their own account")
		}
		if err := users.Delete(ctx, actor, input.ID); err != nil {
			return nil, mapError(err, "user")
		}
		return nil, nil
	})
}
