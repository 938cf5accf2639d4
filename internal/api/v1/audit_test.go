package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/techtransfer/internal/api/v1"
	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/domain"
)

func (f *fixture) auditAPI(t *testing.T) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	names := audit.NewActorNames(16, time.Minute, func(ctx context.Context, actor domain.Ref) (string, error) {
		u, err := f.store.users.GetByID(ctx, actor.ID)
		if err != nil {
			return "", err
		}
		return u.Name, nil
	})
	v1.RegisterAuditRoutes(api, f.store, names)
	return api
}

func decodeRecords(t *testing.T, body []byte) []domain.AuditRecord {
	t.Helper()
	var recs []domain.AuditRecord
	require.NoError(t, json.Unmarshal(body, &recs))
	return recs
}

func TestAuditRoutes(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	p := f.seedProject(t, f.owner.ID, "Solar Kiln")
	require.NoError(t, f.auditor.Created(ctx, f.owner.Actor(), p))
	before := p.AuditAttributes()
	p.Budget = 2000
	old, changed := domain.ChangedFields(before, p.AuditAttributes())
	require.NoError(t, f.auditor.Updated(ctx, f.admin.Actor(), p, old, changed))
	require.NoError(t, f.auditor.LogAuth(ctx, domain.AuditActionLogin, f.owner))

	// A record written without a description, as older rows may be.
	ownerType := "User"
	subjectType := "Award"
	awardID := uuid.New()
	_, err := f.records.Append(ctx, &domain.AuditRecord{
		ActorType:   &ownerType,
		ActorID:     &f.owner.ID,
		Action:      domain.AuditActionCreate,
		SubjectType: &subjectType,
		SubjectID:   &awardID,
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)

	api := f.auditAPI(t)

	t.Run("admin_only", func(t *testing.T) {
		t.Parallel()
		resp := api.GetCtx(f.ownerCtx(), "/audit")
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("list_by_action", func(t *testing.T) {
		t.Parallel()
		resp := api.GetCtx(f.adminCtx(), "/audit?action=create")
		require.Equal(t, http.StatusOK, resp.Code)
		recs := decodeRecords(t, resp.Body.Bytes())
		require.Len(t, recs, 2)
		for _, rec := range recs {
			assert.Equal(t, domain.AuditActionCreate, rec.Action)
		}
	})

	t.Run("list_by_subject_slug", func(t *testing.T) {
		t.Parallel()
		resp := api.GetCtx(f.adminCtx(), "/audit?subject_type=awards")
		require.Equal(t, http.StatusOK, resp.Code)
		recs := decodeRecords(t, resp.Body.Bytes())
		require.Len(t, recs, 1)
		require.NotNil(t, recs[0].Description)
		assert.Equal(t, "Dana Cruz created a new Award", *recs[0].Description)
	})

	t.Run("subject_history", func(t *testing.T) {
		t.Parallel()
		resp := api.GetCtx(f.adminCtx(), "/audit/subjects/projects/"+p.ID.String())
		require.Equal(t, http.StatusOK, resp.Code)
		recs := decodeRecords(t, resp.Body.Bytes())
		require.Len(t, recs, 2)
		assert.Equal(t, domain.AuditActionUpdate, recs[0].Action)
		assert.Equal(t, domain.AuditActionCreate, recs[1].Action)
	})

	t.Run("subject_latest", func(t *testing.T) {
		t.Parallel()
		resp := api.GetCtx(f.adminCtx(), "/audit/subjects/Project/"+p.ID.String()+"/latest")
		require.Equal(t, http.StatusOK, resp.Code)
		var rec domain.AuditRecord
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rec))
		assert.Equal(t, domain.AuditActionUpdate, rec.Action)
		v, ok := rec.AfterValues.Get("budget")
		require.True(t, ok)
		assert.InDelta(t, 2000.0, v, 0)
	})

	t.Run("subject_without_history", func(t *testing.T) {
		t.Parallel()
		resp := api.GetCtx(f.adminCtx(), "/audit/subjects/Project/"+uuid.NewString()+"/latest")
		assert.Equal(t, http.StatusNotFound, resp.Code)

		resp = api.GetCtx(f.adminCtx(), "/audit/subjects/Project/"+uuid.NewString())
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, decodeRecords(t, resp.Body.Bytes()))
	})

	t.Run("by_actor", func(t *testing.T) {
		t.Parallel()
		resp := api.GetCtx(f.adminCtx(), "/audit/actors/"+f.owner.ID.String())
		require.Equal(t, http.StatusOK, resp.Code)
		recs := decodeRecords(t, resp.Body.Bytes())
		assert.Len(t, recs, 3)
	})
}
