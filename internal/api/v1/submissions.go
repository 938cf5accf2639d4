package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/domain"
	"github.com/gosuda/techtransfer/internal/server/middleware"
)

const dateLayout = "2006-01-02"

// submission is satisfied by every staff-submitted record type.
type submission interface {
	domain.Archivable
	OwnedBy(userID uuid.UUID) bool
	MoveTo(campusID uuid.UUID, college string)
}

type submissionRepo[T submission] interface {
	domain.Repository[T]
	List(ctx context.Context, filter domain.ListFilter) ([]T, error)
}

// Placement selects where a submission is filed. Missing values default to
// the submitter's own campus and college.
type Placement struct {
	CampusID *uuid.UUID `json:"campus_id,omitempty" doc:"Campus ID; defaults to the submitter's campus"`
	College  string     `json:"college,omitempty" maxLength:"255" doc:"College; defaults to the submitter's college"`
}

// owner is the resolved placement of a new submission.
type owner struct {
	UserID   uuid.UUID
	CampusID uuid.UUID
	College  string
}

// resource describes one submission endpoint family.
type resource[T submission, B any] struct {
	noun  string // singular, kebab case
	path  string
	tag   string
	repo  submissionRepo[T]
	place func(b *B) Placement
	build func(o owner, b *B) (T, error)
	// apply copies editable fields from b onto e. Only admins may change
	// review fields.
	apply func(e T, b *B, admin bool) error
}

func (r resource[T, B]) label() string { return strings.ReplaceAll(r.noun, "-", " ") }

type submissionIDInput struct {
	ID uuid.UUID `path:"id" doc:"Record ID"`
}

type createSubmissionInput[B any] struct {
	Body B
}

type updateSubmissionInput[B any] struct {
	ID   uuid.UUID `path:"id" doc:"Record ID"`
	Body B
}

type listSubmissionsInput struct {
	OwnerID         uuid.UUID `query:"owner_id" doc:"Admin only: restrict to one submitter"`
	CampusID        uuid.UUID `query:"campus_id" doc:"Restrict to one campus"`
	IncludeArchived bool      `query:"include_archived" doc:"Include archived records"`
	Limit           int       `query:"limit" minimum:"1" maximum:"500" default:"50" doc:"Page size"`
	Offset          int       `query:"offset" minimum:"0" doc:"Page offset"`
}

type ArchiveInput struct {
	ID   uuid.UUID `path:"id" doc:"Record ID"`
	Body struct {
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Current password, reconfirmed before archiving"` //nolint:gosec // G117: credential DTO
	}
}

type entityOutput[T any] struct {
	Body T
}

type listOutput[T any] struct {
	Body []T
}

// registerSubmission wires create, list, get, update, delete and archive for
// one submission type. Mutations go through the audit interceptor; archive
// runs the credential-reconfirming workflow.
func registerSubmission[T submission, B any](api huma.API, store DataStore, res resource[T, B], auditor *audit.Auditor, verifier audit.CredentialVerifier) {
	tracked := audit.TrackArchivable[T](auditor, res.repo, verifier)
	plural := strings.TrimPrefix(res.path, "/")
	label := res.label()

	// load returns the record if the caller may act on it.
	load := func(ctx context.Context, actor *domain.Actor, id uuid.UUID) (T, error) {
		var zero T
		e, err := res.repo.GetByID(ctx, id)
		if err != nil {
			return zero, mapError(err, label)
		}
		if !middleware.IsAdmin(ctx) && !e.OwnedBy(actor.ID) {
			return zero, huma.Error403Forbidden("not the owner of this " + label)
		}
		return e, nil
	}

	huma.Register(api, huma.Operation{
		OperationID:   "create-" + res.noun,
		Method:        http.MethodPost,
		Path:          res.path,
		Summary:       "Submit a new " + label,
		Tags:          []string{res.tag},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *createSubmissionInput[B]) (*entityOutput[T], error) {
		actor, err := currentActor(ctx)
		if err != nil {
			return nil, err
		}

		o, err := resolveOwner(ctx, store, actor.ID, res.place(&input.Body))
		if err != nil {
			return nil, err
		}

		e, err := res.build(o, &input.Body)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}

		if err := tracked.Create(ctx, actor, e); err != nil {
			return nil, mapError(err, label)
		}

		return &entityOutput[T]{Body: e}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-" + plural,
		Method:      http.MethodGet,
		Path:        res.path,
		Summary:     "List " + strings.ReplaceAll(plural, "-", " "),
		Description: "Non-admins only see their own submissions.",
		Tags:        []string{res.tag},
	}, func(ctx context.Context, input *listSubmissionsInput) (*listOutput[T], error) {
		actor, err := currentActor(ctx)
		if err != nil {
			return nil, err
		}

		filter := domain.ListFilter{
			IncludeArchived: input.IncludeArchived,
			Limit:           input.Limit,
			Offset:          input.Offset,
		}
		switch {
		case !middleware.IsAdmin(ctx):
			filter.OwnerID = &actor.ID
		case input.OwnerID != uuid.Nil:
			filter.OwnerID = &input.OwnerID
		}
		if input.CampusID != uuid.Nil {
			filter.CampusID = &input.CampusID
		}

		items, err := res.repo.List(ctx, filter)
		if err != nil {
			return nil, mapError(err, label)
		}

		return &listOutput[T]{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-" + res.noun,
		Method:      http.MethodGet,
		Path:        res.path + "/{id}",
		Summary:     "Get a " + label + " by ID",
		Tags:        []string{res.tag},
	}, func(ctx context.Context, input *submissionIDInput) (*entityOutput[T], error) {
		actor, err := currentActor(ctx)
		if err != nil {
			return nil, err
		}

		e, err := load(ctx, actor, input.ID)
		if err != nil {
			return nil, err
		}

		return &entityOutput[T]{Body: e}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-" + res.noun,
		Method:      http.MethodPut,
		Path:        res.path + "/{id}",
		Summary:     "Update a " + label,
		Tags:        []string{res.tag},
	}, func(ctx context.Context, input *updateSubmissionInput[B]) (*entityOutput[T], error) {
		actor, err := currentActor(ctx)
		if err != nil {
			return nil, err
		}

		e, err := load(ctx, actor, input.ID)
		if err != nil {
			return nil, err
		}
		if e.IsArchived() {
			return nil, huma.Error409Conflict("archived " + label + " cannot be edited")
		}

		if p := res.place(&input.Body); p.CampusID != nil || p.College != "" {
			o, err := resolveOwner(ctx, store, actor.ID, p)
			if err != nil {
				return nil, err
			}
			e.MoveTo(o.CampusID, o.College)
		}
		if err := res.apply(e, &input.Body, middleware.IsAdmin(ctx)); err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}

		if err := tracked.Update(ctx, actor, e); err != nil {
			return nil, mapError(err, label)
		}

		return &entityOutput[T]{Body: e}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-" + res.noun,
		Method:      http.MethodDelete,
		Path:        res.path + "/{id}",
		Summary:     "Delete a " + label,
		Tags:        []string{res.tag},
	}, func(ctx context.Context, input *submissionIDInput) (*struct{}, error) {
		actor, err := currentActor(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := load(ctx, actor, input.ID); err != nil {
			return nil, err
		}

		if err := tracked.Delete(ctx, actor, input.ID); err != nil {
			return nil, mapError(err, label)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "archive-" + res.noun,
		Method:      http.MethodPost,
		Path:        res.path + "/{id}/archive",
		Summary:     "Archive a " + label,
		Description: "Requires the caller's current password. Writes a single archive record to the audit trail.",
		Tags:        []string{res.tag},
	}, func(ctx context.Context, input *ArchiveInput) (*entityOutput[T], error) {
		actor, err := currentActor(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := load(ctx, actor, input.ID); err != nil {
			return nil, err
		}

		e, err := tracked.Archive(ctx, actor, input.ID, input.Body.Password)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict(label + " is already archived")
			}
			return nil, mapError(err, label)
		}

		return &entityOutput[T]{Body: e}, nil
	})
}

// resolveOwner fills the placement of a submission from the submitter's
// profile and checks that the campus exists and offers the college.
func resolveOwner(ctx context.Context, store DataStore, userID uuid.UUID, p Placement) (owner, error) {
	o := owner{UserID: userID, College: p.College}
	if p.CampusID != nil {
		o.CampusID = *p.CampusID
	}

	if o.CampusID == uuid.Nil || o.College == "" {
		u, err := store.Users().GetByID(ctx, userID)
		if err != nil {
			return owner{}, mapError(err, "user")
		}
		if o.CampusID == uuid.Nil && u.CampusID != nil {
			o.CampusID = *u.CampusID
		}
		if o.College == "" {
			o.College = u.College
		}
	}
	if o.CampusID == uuid.Nil {
		return owner{}, huma.Error422UnprocessableEntity("campus_id is required when the profile has no campus")
	}

	if err := checkCampus(ctx, store, o.CampusID, o.College); err != nil {
		return owner{}, err
	}

	return o, nil
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, errors.New(field + " must be a date in YYYY-MM-DD form")
	}
	return t, nil
}

// parseOptDate parses s unless it is empty.
func parseOptDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
