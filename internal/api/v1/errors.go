package v1

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/auth"
	"github.com/gosuda/techtransfer/internal/domain"
	"github.com/gosuda/techtransfer/internal/server/middleware"
)

// mapError translates service and repository errors into API errors. what
// names the resource in 404 and 500 messages.
func mapError(err error, what string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(what + " not found")
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict(what + " conflicts with the current state")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return huma.Error422UnprocessableEntity("password confirmation failed")
	case errors.Is(err, domain.ErrValidation), errors.Is(err, auth.ErrWeakPassword):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return huma.Error401Unauthorized("authentication required")
	case errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden("not allowed")
	case errors.Is(err, audit.ErrNotRecorded):
		return huma.Error500InternalServerError("change saved but the audit record failed", err)
	default:
		return huma.Error500InternalServerError("failed to process "+what, err)
	}
}

// currentActor returns the authenticated actor or a 401.
func currentActor(ctx context.Context) (*domain.Actor, error) {
	actor := middleware.ActorFromContext(ctx)
	if actor == nil {
		return nil, huma.Error401Unauthorized("authentication required")
	}
	return actor, nil
}

func requireAdmin(ctx context.Context) error {
	if !middleware.IsAdmin(ctx) {
		return huma.Error403Forbidden("admin role required")
	}
	return nil
}
