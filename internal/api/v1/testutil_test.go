package v1_test

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/auth"
	"github.com/gosuda/techtransfer/internal/domain"
	"github.com/gosuda/techtransfer/internal/server/middleware"
	"github.com/gosuda/techtransfer/internal/store/memory"
)

// ---------------------------------------------------------------------------
// Context helpers: inject user/role into context for the *Ctx request helpers
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID, name string) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserName, name)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, domain.RoleUser)
	return ctx
}

func adminCtx(userID uuid.UUID, name string) context.Context {
	ctx := userCtx(userID, name)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, domain.RoleAdmin)
	return ctx
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	campuses    domain.CampusRepository
	users       domain.UserRepository
	projects    domain.ProjectRepository
	awards      domain.AwardRepository
	partners    domain.InternationalPartnerRepository
	modalities  domain.ModalityRepository
	resolutions domain.ResolutionRepository
	impacts     domain.ImpactAssessmentRepository
	audit       domain.AuditRepository
}

func (m *mockDataStore) Campuses() domain.CampusRepository                           { return m.campuses }
func (m *mockDataStore) Users() domain.UserRepository                                { return m.users }
func (m *mockDataStore) Projects() domain.ProjectRepository                          { return m.projects }
func (m *mockDataStore) Awards() domain.AwardRepository                              { return m.awards }
func (m *mockDataStore) InternationalPartners() domain.InternationalPartnerRepository { return m.partners }
func (m *mockDataStore) Modalities() domain.ModalityRepository                       { return m.modalities }
func (m *mockDataStore) Resolutions() domain.ResolutionRepository                    { return m.resolutions }
func (m *mockDataStore) ImpactAssessments() domain.ImpactAssessmentRepository        { return m.impacts }
func (m *mockDataStore) Audit() domain.AuditRepository                               { return m.audit }

// ---------------------------------------------------------------------------
// Mock CampusRepository
// ---------------------------------------------------------------------------

type mockCampusRepo struct {
	createFunc    func(ctx context.Context, c *domain.Campus) error
	getByIDFunc   func(ctx context.Context, id uuid.UUID) (*domain.Campus, error)
	getByCodeFunc func(ctx context.Context, code string) (*domain.Campus, error)
	updateFunc    func(ctx context.Context, c *domain.Campus) error
	listFunc      func(ctx context.Context) ([]*domain.Campus, error)
}

func (m *mockCampusRepo) Create(ctx context.Context, c *domain.Campus) error {
	return m.createFunc(ctx, c)
}

func (m *mockCampusRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Campus, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockCampusRepo) GetByCode(ctx context.Context, code string) (*domain.Campus, error) {
	return m.getByCodeFunc(ctx, code)
}

func (m *mockCampusRepo) Update(ctx context.Context, c *domain.Campus) error {
	return m.updateFunc(ctx, c)
}

func (m *mockCampusRepo) List(ctx context.Context) ([]*domain.Campus, error) {
	return m.listFunc(ctx)
}

// campusRepoWith returns a campus repository that knows exactly c.
func campusRepoWith(c *domain.Campus) *mockCampusRepo {
	return &mockCampusRepo{
		getByIDFunc: func(_ context.Context, id uuid.UUID) (*domain.Campus, error) {
			if id != c.ID {
				return nil, domain.ErrNotFound
			}
			cp := *c
			return &cp, nil
		},
		listFunc: func(_ context.Context) ([]*domain.Campus, error) {
			return []*domain.Campus{c}, nil
		},
	}
}

// ---------------------------------------------------------------------------
// In-memory ProjectRepository
// ---------------------------------------------------------------------------

type projectRepo struct {
	*memory.Repo[*domain.Project]
}

func newProjectRepo(seed ...*domain.Project) *projectRepo {
	r := &projectRepo{Repo: memory.NewRepo(memory.CloneProject)}
	for _, p := range seed {
		_ = r.Create(context.Background(), p)
	}
	return r
}

func (r *projectRepo) List(_ context.Context, f domain.ListFilter) ([]*domain.Project, error) {
	out := []*domain.Project{}
	for _, p := range r.All() {
		if f.OwnerID != nil && p.UserID != *f.OwnerID {
			continue
		}
		if f.CampusID != nil && p.CampusID != *f.CampusID {
			continue
		}
		if p.Archived && !f.IncludeArchived {
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *domain.Project) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc       func(ctx context.Context, name, email, password string) (*domain.User, error)
	loginFunc          func(ctx context.Context, email, password string) (string, string, error)
	logoutFunc         func(ctx context.Context, userID uuid.UUID) error
	refreshTokenFunc   func(ctx context.Context, refreshToken string) (string, error)
	verifyPasswordFunc func(ctx context.Context, userID uuid.UUID, password string) error
	changePasswordFunc func(ctx context.Context, userID uuid.UUID, current, next string) error
}

func (m *mockAuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	return m.registerFunc(ctx, name, email, password)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return m.logoutFunc(ctx, userID)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

func (m *mockAuthService) VerifyPassword(ctx context.Context, userID uuid.UUID, password string) error {
	return m.verifyPasswordFunc(ctx, userID, password)
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	return m.changePasswordFunc(ctx, userID, current, next)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

type fixture struct {
	store   *mockDataStore
	records *memory.AuditRepo
	auditor *audit.Auditor
	campus  *domain.Campus
	owner   *domain.User
	admin   *domain.User
}

func newFixture() *fixture {
	campus := &domain.Campus{ID: uuid.New(), Code: "MAIN", Name: "Main Campus", Colleges: []string{"CEIT", "CAS"}}

	owner := &domain.User{ID: uuid.New(), Name: "Dana Cruz", Email: "dana@example.edu", IsActive: true, CampusID: &campus.ID, College: "CEIT"}
	admin := &domain.User{ID: uuid.New(), Name: "Ramon Reyes", Email: "ramon@example.edu", IsActive: true, IsAdmin: true}

	users := memory.NewUserRepo()
	_ = users.Create(context.Background(), owner)
	_ = users.Create(context.Background(), admin)

	records := memory.NewAuditRepo()
	return &fixture{
		store: &mockDataStore{
			campuses: campusRepoWith(campus),
			users:    users,
			projects: newProjectRepo(),
			audit:    records,
		},
		records: records,
		auditor: audit.New(records),
		campus:  campus,
		owner:   owner,
		admin:   admin,
	}
}

func (f *fixture) ownerCtx() context.Context { return userCtx(f.owner.ID, f.owner.Name) }
func (f *fixture) adminCtx() context.Context { return adminCtx(f.admin.ID, f.admin.Name) }

func (f *fixture) actions(subject domain.Ref) []domain.AuditAction {
	out := []domain.AuditAction{}
	for rec, err := range f.records.RecordsFor(context.Background(), subject) {
		if err != nil {
			return nil
		}
		out = append(out, rec.Action)
	}
	return out
}

var errInvalidPassword = fmt.Errorf("verify: %w", auth.ErrInvalidCredentials)

// verifierFunc adapts a function to audit.CredentialVerifier.
type verifierFunc func(ctx context.Context, userID uuid.UUID, password string) error

func (f verifierFunc) VerifyPassword(ctx context.Context, userID uuid.UUID, password string) error {
	return f(ctx, userID, password)
}

func acceptPassword(want string) verifierFunc {
	return func(_ context.Context, _ uuid.UUID, password string) error {
		if password != want {
			return errInvalidPassword
		}
		return nil
	}
}
