package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/techtransfer/internal/domain"
)

type CampusBody struct {
	Code     string   `json:"code" minLength:"1" maxLength:"32" doc:"Short campus code"`
	Name     string   `json:"name" minLength:"1" maxLength:"255" doc:"Campus name"`
	Colleges []string `json:"colleges,omitempty" doc:"Colleges offered at the campus"`
}

type CreateCampusInput struct {
	Body CampusBody
}

type UpdateCampusInput struct {
	ID   uuid.UUID `path:"id" doc:"Campus ID"`
	Body CampusBody
}

type CampusIDInput struct {
	ID uuid.UUID `path:"id" doc:"Campus ID"`
}

type CampusOutput struct {
	Body *domain.Campus
}

type ListCampusesOutput struct {
	Body []*domain.Campus
}

// RegisterCampusRoutes registers campus reference data. Any authenticated
// user may read it; only admins may change it.
func RegisterCampusRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-campus",
		Method:        http.MethodPost,
		Path:          "/campuses",
		Summary:       "Create a campus",
		Tags:          []string{"Campuses"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateCampusInput) (*CampusOutput, error) {
		if err := requireAdmin(ctx); err != nil {
			return nil, err
		}

		c, err := domain.NewCampus(input.Body.Code, input.Body.Name, input.Body.Colleges)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		if err := store.Campuses().Create(ctx, c); err != nil {
			return nil, mapError(err, "campus")
		}

		return &CampusOutput{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-campuses",
		Method:      http.MethodGet,
		Path:        "/campuses",
		Summary:     "List campuses",
		Tags:        []string{"Campuses"},
	}, func(ctx context.Context, _ *struct{}) (*ListCampusesOutput, error) {
		if _, err := currentActor(ctx); err != nil {
			return nil, err
		}
		campuses, err := store.Campuses().List(ctx)
		if err != nil {
			return nil, mapError(err, "campuses")
		}
		return &ListCampusesOutput{Body: campuses}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-campus",
		Method:      http.MethodGet,
		Path:        "/campuses/{id}",
		Summary:     "Get a campus by ID",
		Tags:        []string{"Campuses"},
	}, func(ctx context.Context, input *CampusIDInput) (*CampusOutput, error) {
		if _, err := currentActor(ctx); err != nil {
			return nil, err
		}
		c, err := store.Campuses().GetByID(ctx, input.ID)
		if err != nil {
			return nil, mapError(err, "campus")
		}
		return &CampusOutput{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-campus",
		Method:      http.MethodPut,
		Path:        "/campuses/{id}",
		Summary:     "Update a campus",
		Tags:        []string{"Campuses"},
	}, func(ctx context.Context, input *UpdateCampusInput) (*CampusOutput, error) {
		if err := requireAdmin(ctx); err != nil {
			return nil, err
		}

		c, err := store.Campuses().GetByID(ctx, input.ID)
		if err != nil {
			return nil, mapError(err, "campus")
		}

		next, err := domain.NewCampus(input.Body.Code, input.Body.Name, input.Body.Colleges)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		c.Code = next.Code
		c.Name = next.Name
		c.Colleges = next.Colleges
		c.UpdatedAt = time.Now()

		if err := store.Campuses().Update(ctx, c); err != nil {
			return nil, mapError(err, "campus")
		}
		return &CampusOutput{Body: c}, nil
	})
}
