package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/techtransfer/internal/domain"
)

type Store struct {
	pool        *pgxpool.Pool
	campuses    *CampusRepo
	users       *UserRepo
	projects    *ProjectRepo
	awards      *AwardRepo
	partners    *InternationalPartnerRepo
	modalities  *ModalityRepo
	resolutions *ResolutionRepo
	impacts     *ImpactAssessmentRepo
	audit       *AuditRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return NewFromPool(pool), nil
}

// NewFromPool builds a Store on an existing pool. Close closes the pool.
func NewFromPool(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:        pool,
		campuses:    NewCampusRepo(pool),
		users:       NewUserRepo(pool),
		projects:    NewProjectRepo(pool),
		awards:      NewAwardRepo(pool),
		partners:    NewInternationalPartnerRepo(pool),
		modalities:  NewModalityRepo(pool),
		resolutions: NewResolutionRepo(pool),
		impacts:     NewImpactAssessmentRepo(pool),
		audit:       NewAuditRepo(pool),
	}
}

func (s *Store) Close() {
	s.pool.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres.Store.Ping: %w", err)
	}
	return nil
}

func (s *Store) Campuses() domain.CampusRepository                           { return s.campuses }
func (s *Store) Users() domain.UserRepository                                { return s.users }
func (s *Store) Projects() domain.ProjectRepository                          { return s.projects }
func (s *Store) Awards() domain.AwardRepository                              { return s.awards }
func (s *Store) InternationalPartners() domain.InternationalPartnerRepository { return s.partners }
func (s *Store) Modalities() domain.ModalityRepository                       { return s.modalities }
func (s *Store) Resolutions() domain.ResolutionRepository                    { return s.resolutions }
func (s *Store) ImpactAssessments() domain.ImpactAssessmentRepository        { return s.impacts }
func (s *Store) Audit() domain.AuditRepository                               { return s.audit }
