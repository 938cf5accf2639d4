package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/domain"
)

type ListAuditInput struct {
	Action      string `query:"action" doc:"Restrict to one action, e.g. update"`
	SubjectType string `query:"subject_type" doc:"Restrict to one subject type, e.g. Project"`
	Limit       int    `query:"limit" minimum:"1" maximum:"500" default:"50" doc:"Page size"`
	Offset      int    `query:"offset" minimum:"0" doc:"Page offset"`
}

type SubjectInput struct {
	Kind string    `path:"kind" doc:"Subject type, e.g. Project or international-partners"`
	ID   uuid.UUID `path:"id" doc:"Subject ID"`
}

type ActorRecordsInput struct {
	ID     uuid.UUID `path:"id" doc:"Acting user ID"`
	Limit  int       `query:"limit" minimum:"1" maximum:"500" default:"50" doc:"Page size"`
	Offset int       `query:"offset" minimum:"0" doc:"Page offset"`
}

type AuditRecordsOutput struct {
	Body []*domain.AuditRecord
}

type AuditRecordOutput struct {
	Body *domain.AuditRecord
}

// RegisterAuditRoutes registers the read side of the audit trail for admins.
// Records stored without a description get one derived from names when
// names is not nil.
func RegisterAuditRoutes(api huma.API, store DataStore, names *audit.ActorNames) {
	describe := func(ctx context.Context, recs ...*domain.AuditRecord) {
		if names == nil {
			return
		}
		for _, rec := range recs {
			if rec.Description == nil || *rec.Description == "" {
				desc := names.Describe(ctx, rec)
				rec.Description = &desc
			}
		}
	}

	huma.Register(api, huma.Operation{
		OperationID: "list-audit-records",
		Method:      http.MethodGet,
		Path:        "/audit",
		Summary:     "List audit records",
		Description: "Newest first.",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *ListAuditInput) (*AuditRecordsOutput, error) {
		if err := requireAdmin(ctx); err != nil {
			return nil, err
		}

		subjectType := input.SubjectType
		if k, ok := domain.ParseEntityKind(subjectType); ok {
			subjectType = string(k)
		}

		recs, err := store.Audit().List(ctx, domain.AuditFilter{
			Action:      domain.AuditAction(input.Action),
			SubjectType: subjectType,
			Limit:       input.Limit,
			Offset:      input.Offset,
		})
		if err != nil {
			return nil, mapError(err, "audit records")
		}
		describe(ctx, recs...)
		return &AuditRecordsOutput{Body: recs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-subject-audit-records",
		Method:      http.MethodGet,
		Path:        "/audit/subjects/{kind}/{id}",
		Summary:     "List the audit history of one record",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *SubjectInput) (*AuditRecordsOutput, error) {
		if err := requireAdmin(ctx); err != nil {
			return nil, err
		}

		recs := []*domain.AuditRecord{}
		for rec, err := range store.Audit().RecordsFor(ctx, subjectRef(input.Kind, input.ID)) {
			if err != nil {
				return nil, mapError(err, "audit records")
			}
			recs = append(recs, rec)
		}
		describe(ctx, recs...)
		return &AuditRecordsOutput{Body: recs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-latest-subject-audit-record",
		Method:      http.MethodGet,
		Path:        "/audit/subjects/{kind}/{id}/latest",
		Summary:     "Get the most recent audit record of one record",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *SubjectInput) (*AuditRecordOutput, error) {
		if err := requireAdmin(ctx); err != nil {
			return nil, err
		}

		rec, err := store.Audit().LatestFor(ctx, subjectRef(input.Kind, input.ID))
		if err != nil {
			return nil, mapError(err, "audit record")
		}
		describe(ctx, rec)
		return &AuditRecordOutput{Body: rec}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-actor-audit-records",
		Method:      http.MethodGet,
		Path:        "/audit/actors/{id}",
		Summary:     "List the audit records caused by one user",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *ActorRecordsInput) (*AuditRecordsOutput, error) {
		if err := requireAdmin(ctx); err != nil {
			return nil, err
		}

		actor := domain.Ref{Kind: domain.KindUser, ID: input.ID}
		recs, err := store.Audit().RecordsByActor(ctx, actor, input.Limit, input.Offset)
		if err != nil {
			return nil, mapError(err, "audit records")
		}
		describe(ctx, recs...)
		return &AuditRecordsOutput{Body: recs}, nil
	})
}

// subjectRef maps a URL kind to a reference. Unknown kinds are looked up by
// their literal type name.
func subjectRef(kind string, id uuid.UUID) domain.Ref {
	if k, ok := domain.ParseEntityKind(kind); ok {
		return domain.Ref{Kind: k, ID: id}
	}
	return domain.Ref{Kind: domain.KindExternal, Name: kind, ID: id}
}
