package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/techtransfer/internal/domain"
)

// ---------------------------------------------------------------------------
// 1. Values: ordering, lookup, JSON.
// ---------------------------------------------------------------------------

func TestValues_JSONPreservesOrder(t *testing.T) {
	t.Parallel()

	v := domain.Values{
		{Name: "zeta", Value: "z"},
		{Name: "alpha", Value: 1},
		{Name: "mid", Value: nil},
	}

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta":"z","alpha":1,"mid":null}`, string(data))
	assert.Equal(t, `{"zeta":"z","alpha":1,"mid":null}`, string(data))

	var back domain.Values
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, back.Names())
	got, ok := back.Get("alpha")
	require.True(t, ok)
	assert.InDelta(t, 1.0, got, 0)
}

func TestValues_NilEncodesNull(t *testing.T) {
	t.Parallel()

	var v domain.Values
	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var back domain.Values
	require.NoError(t, json.Unmarshal([]byte("null"), &back))
	assert.Nil(t, back)
}

func TestValues_UnmarshalRejectsNonObject(t *testing.T) {
	t.Parallel()

	var v domain.Values
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &v))
}

func TestValues_Without(t *testing.T) {
	t.Parallel()

	v := domain.Values{
		{Name: "name", Value: "a"},
		{Name: "password", Value: "secret"},
		{Name: "updated_at", Value: time.Now()},
	}
	out := v.Without(map[string]struct{}{"password": {}, "updated_at": {}})

	assert.Equal(t, []string{"name"}, out.Names())
	assert.Equal(t, 3, v.Len(), "input must not be modified")
	assert.Nil(t, domain.Values(nil).Without(map[string]struct{}{"x": {}}))
}

func TestValues_Intersects(t *testing.T) {
	t.Parallel()

	v := domain.Values{{Name: "position", Value: "Dean"}}
	assert.False(t, v.Intersects("name", "email"))
	assert.True(t, v.Intersects("email", "position"))
}

// ---------------------------------------------------------------------------
// 2. ChangedFields: dirty tracking.
// ---------------------------------------------------------------------------

func TestChangedFields(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		before    domain.Values
		after     domain.Values
		wantNames []string
	}{
		{
			name:      "no change",
			before:    domain.Values{{Name: "budget", Value: 1000.0}},
			after:     domain.Values{{Name: "budget", Value: 1000.0}},
			wantNames: nil,
		},
		{
			name:      "single change",
			before:    domain.Values{{Name: "name", Value: "a"}, {Name: "budget", Value: 1000.0}},
			after:     domain.Values{{Name: "name", Value: "a"}, {Name: "budget", Value: 2000.0}},
			wantNames: []string{"budget"},
		},
		{
			name:      "same instant different zone",
			before:    domain.Values{{Name: "at", Value: t0}},
			after:     domain.Values{{Name: "at", Value: t0.In(time.FixedZone("PHT", 8*3600))}},
			wantNames: nil,
		},
		{
			name:      "new field counts as changed",
			before:    domain.Values{},
			after:     domain.Values{{Name: "college", Value: "CEIT"}},
			wantNames: []string{"college"},
		},
		{
			name:      "nil to value",
			before:    domain.Values{{Name: "end_date", Value: nil}},
			after:     domain.Values{{Name: "end_date", Value: "2024-12-31"}},
			wantNames: []string{"end_date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			old, updated := domain.ChangedFields(tt.before, tt.after)
			if tt.wantNames == nil {
				assert.Empty(t, updated)
				assert.Empty(t, old)
				return
			}
			assert.Equal(t, tt.wantNames, updated.Names())
			assert.Equal(t, tt.wantNames, old.Names())
		})
	}
}

func TestChangedFields_ReportsPriorValues(t *testing.T) {
	t.Parallel()

	old, updated := domain.ChangedFields(
		domain.Values{{Name: "budget", Value: 1000.0}},
		domain.Values{{Name: "budget", Value: 2000.0}},
	)
	assert.Equal(t, map[string]any{"budget": 1000.0}, old.Map())
	assert.Equal(t, map[string]any{"budget": 2000.0}, updated.Map())
}

// ---------------------------------------------------------------------------
// 3. EntityKind / Ref: tagged references.
// ---------------------------------------------------------------------------

func TestParseEntityKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want domain.EntityKind
		ok   bool
	}{
		{"Project", domain.KindProject, true},
		{"projects", domain.KindProject, true},
		{"InternationalPartner", domain.KindInternationalPartner, true},
		{"international-partners", domain.KindInternationalPartner, true},
		{"international_partner", domain.KindInternationalPartner, true},
		{"modalities", domain.KindModality, true},
		{"impact-assessments", domain.KindImpactAssessment, true},
		{"user", domain.KindUser, true},
		{"Invoice", domain.KindExternal, false},
		{"", domain.KindExternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, ok := domain.ParseEntityKind(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestNewRef_ExternalKeepsName(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	ref := domain.NewRef("LegacyImport", id)
	assert.Equal(t, domain.KindExternal, ref.Kind)
	assert.Equal(t, "LegacyImport", ref.TypeName())
	assert.Equal(t, id, ref.ID)

	known := domain.NewRef("Award", id)
	assert.Equal(t, domain.KindAward, known.Kind)
	assert.Equal(t, "Award", known.TypeName())
	assert.False(t, domain.KindExternal.Known())
}

func TestActor_DisplayName(t *testing.T) {
	t.Parallel()

	var nobody *domain.Actor
	assert.Equal(t, "System", nobody.DisplayName())
	assert.False(t, nobody.Is(domain.Ref{Kind: domain.KindUser, ID: uuid.New()}))

	a := &domain.Actor{Kind: domain.KindUser, ID: uuid.New(), Name: "Maria"}
	assert.Equal(t, "Maria", a.DisplayName())
	assert.True(t, a.Is(domain.Ref{Kind: domain.KindUser, ID: a.ID}))
}

func TestAuditRecord_References(t *testing.T) {
	t.Parallel()

	rec := &domain.AuditRecord{Action: domain.AuditActionLogin}
	_, ok := rec.Subject()
	assert.False(t, ok)
	_, ok = rec.ActorRef()
	assert.False(t, ok)

	typ := "Project"
	id := uuid.New()
	rec.SubjectType = &typ
	rec.SubjectID = &id
	ref, ok := rec.Subject()
	require.True(t, ok)
	assert.Equal(t, domain.Ref{Kind: domain.KindProject, ID: id}, ref)
}

// ---------------------------------------------------------------------------
// 4. User significance policy.
// ---------------------------------------------------------------------------

func TestUser_AuditSignificant(t *testing.T) {
	t.Parallel()

	u, err := domain.NewUser("Maria Santos", "maria@example.edu")
	require.NoError(t, err)
	self := u.Actor()
	admin := &domain.Actor{Kind: domain.KindUser, ID: uuid.New(), Name: "Admin"}

	tests := []struct {
		name   string
		action domain.AuditAction
		actor  *domain.Actor
		after  domain.Values
		want   bool
	}{
		{"self edits name", domain.AuditActionUpdate, self, domain.Values{{Name: "name", Value: "M. Santos"}}, true},
		{"self edits position", domain.AuditActionUpdate, self, domain.Values{{Name: "position", Value: "Dean"}}, false},
		{"self edits position and email", domain.AuditActionUpdate, self, domain.Values{{Name: "position", Value: "Dean"}, {Name: "email", Value: "m@x.edu"}}, true},
		{"admin grants admin", domain.AuditActionUpdate, admin, domain.Values{{Name: "is_admin", Value: true}}, true},
		{"admin edits avatar", domain.AuditActionUpdate, admin, domain.Values{{Name: "avatar_url", Value: "x.png"}}, false},
		{"password only", domain.AuditActionUpdate, self, domain.Values{{Name: "password_hash", Value: "h"}}, false},
		{"create always", domain.AuditActionCreate, nil, u.AuditAttributes(), true},
		{"delete always", domain.AuditActionDelete, admin, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ev := &domain.ChangeEvent{Action: tt.action, Actor: tt.actor, Subject: u.AuditRef(), After: tt.after}
			assert.Equal(t, tt.want, u.AuditSignificant(ev))
		})
	}
}

func TestNewUser_Validation(t *testing.T) {
	t.Parallel()

	_, err := domain.NewUser("", "a@b.c")
	require.Error(t, err)
	_, err = domain.NewUser("Ana", "not-an-email")
	require.Error(t, err)

	u, err := domain.NewUser("  Ana ", " Ana@Example.EDU ")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, "ana@example.edu", u.Email)
	assert.True(t, u.IsActive)
	assert.Equal(t, domain.RoleUser, u.Role())
}

func TestUser_PasswordHashNotSerialised(t *testing.T) {
	t.Parallel()

	u, err := domain.NewUser("Ana", "ana@example.edu")
	require.NoError(t, err)
	u.PasswordHash = "salt$hash"

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "salt$hash")
}

// ---------------------------------------------------------------------------
// 5. Submissions: constructors and snapshots.
// ---------------------------------------------------------------------------

func TestNewProject(t *testing.T) {
	t.Parallel()

	owner, campus := uuid.New(), uuid.New()
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		owner   uuid.UUID
		title   string
		budget  float64
		start   time.Time
		wantErr bool
	}{
		{"valid", owner, "Solar Kiln", 1000, start, false},
		{"missing owner", uuid.Nil, "Solar Kiln", 1000, start, true},
		{"missing name", owner, "", 1000, start, true},
		{"negative budget", owner, "Solar Kiln", -1, start, true},
		{"missing start", owner, "Solar Kiln", 1000, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := domain.NewProject(tt.owner, campus, "CEIT", tt.title, "energy", tt.budget, tt.start)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.ProjectStatusPending, p.Status)
			assert.False(t, p.IsArchived())
			assert.True(t, p.OwnedBy(owner))
		})
	}
}

func TestProject_AuditAttributes(t *testing.T) {
	t.Parallel()

	p, err := domain.NewProject(uuid.New(), uuid.New(), "CEIT", "Solar Kiln", "energy", 1000, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	attrs := p.AuditAttributes()
	name, _ := attrs.Get("name")
	assert.Equal(t, "Solar Kiln", name)
	start, _ := attrs.Get("start_date")
	assert.Equal(t, "2024-01-15", start)
	end, ok := attrs.Get("end_date")
	assert.True(t, ok)
	assert.Nil(t, end)
	assert.True(t, attrs.Has(domain.ArchivedField))
	assert.True(t, attrs.Has("updated_at"))

	p.SetArchived(true)
	archived, _ := p.AuditAttributes().Get(domain.ArchivedField)
	assert.Equal(t, true, archived)
	assert.Equal(t, domain.Ref{Kind: domain.KindProject, ID: p.ID}, p.AuditRef())
}

func TestArchivableEntities(t *testing.T) {
	t.Parallel()

	owner, campus := uuid.New(), uuid.New()
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	award, err := domain.NewAward(owner, campus, "CAS", "Best Paper", "DOST", domain.AwardLevelNational, day)
	require.NoError(t, err)
	partner, err := domain.NewInternationalPartner(owner, campus, "CAS", "JICA", "Tokyo", "Training", day)
	require.NoError(t, err)
	modality, err := domain.NewModality(owner, campus, "CAS", "Farm Radio Hour", domain.ModalityRadio, "DZRH", "Q1")
	require.NoError(t, err)
	resolution, err := domain.NewResolution(owner, campus, "CAS", "BOR-2024-17", "Adoption", day)
	require.NoError(t, err)
	impact, err := domain.NewImpactAssessment(owner, campus, "CAS", "Kiln reach", "Farmers", 120)
	require.NoError(t, err)

	tests := []struct {
		entity domain.Archivable
		kind   domain.EntityKind
		title  string
	}{
		{award, domain.KindAward, "Best Paper"},
		{partner, domain.KindInternationalPartner, "JICA"},
		{modality, domain.KindModality, "Farm Radio Hour"},
		{resolution, domain.KindResolution, "BOR-2024-17 Adoption"},
		{impact, domain.KindImpactAssessment, "Kiln reach"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.kind, tt.entity.AuditRef().Kind)
			assert.Equal(t, tt.title, tt.entity.AuditTitle())
			assert.True(t, tt.entity.AuditAttributes().Has(domain.ArchivedField))
			assert.False(t, tt.entity.IsArchived())
		})
	}
}

func TestSubmissionConstructors_RejectInvalid(t *testing.T) {
	t.Parallel()

	owner, campus := uuid.New(), uuid.New()
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := domain.NewAward(owner, campus, "CAS", "Best Paper", "DOST", domain.AwardLevel("galactic"), day)
	require.Error(t, err)
	_, err = domain.NewModality(owner, campus, "CAS", "Show", domain.ModalityType("hologram"), "", "")
	require.Error(t, err)
	_, err = domain.NewResolution(owner, campus, "CAS", "", "Adoption", day)
	require.Error(t, err)
	_, err = domain.NewImpactAssessment(owner, uuid.Nil, "CAS", "Reach", "", 1)
	require.Error(t, err)
	_, err = domain.NewInternationalPartner(owner, campus, "CAS", "JICA", "", "", day)
	require.Error(t, err)
}

func TestCampus(t *testing.T) {
	t.Parallel()

	c, err := domain.NewCampus(" main ", "Main Campus", []string{"CEIT", "CAS"})
	require.NoError(t, err)
	assert.Equal(t, "MAIN", c.Code)
	assert.True(t, c.HasCollege("ceit"))
	assert.False(t, c.HasCollege("CON"))

	_, err = domain.NewCampus("", "x", nil)
	require.Error(t, err)
}
