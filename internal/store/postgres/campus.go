package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/techtransfer/internal/domain"
)

type CampusRepo struct {
	pool *pgxpool.Pool
}

func NewCampusRepo(pool *pgxpool.Pool) *CampusRepo {
	return &CampusRepo{pool: pool}
}

func (r *CampusRepo) Create(ctx context.Context, c *domain.Campus) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO campuses (id, code, name, colleges, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Code, c.Name, c.Colleges, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return writeErr("campusRepo.Create", err)
	}

	return nil
}

func (r *CampusRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Campus, error) {
	var c domain.Campus

	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, colleges, created_at, updated_at
		 FROM campuses WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Code, &c.Name, &c.Colleges, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("campusRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("campusRepo.GetByID: %w", err)
	}

	return &c, nil
}

func (r *CampusRepo) GetByCode(ctx context.Context, code string) (*domain.Campus, error) {
	var c domain.Campus

	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, colleges, created_at, updated_at
		 FROM campuses WHERE code = $1`,
		code,
	).Scan(&c.ID, &c.Code, &c.Name, &c.Colleges, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("campusRepo.GetByCode: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("campusRepo.GetByCode: %w", err)
	}

	return &c, nil
}

func (r *CampusRepo) Update(ctx context.Context, c *domain.Campus) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE campuses SET code = $1, name = $2, colleges = $3, updated_at = now()
		 WHERE id = $4
		 RETURNING updated_at`,
		c.Code, c.Name, c.Colleges, c.ID,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("campusRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return writeErr("campusRepo.Update", err)
	}

	return nil
}

func (r *CampusRepo) List(ctx context.Context) ([]*domain.Campus, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, name, colleges, created_at, updated_at
		 FROM campuses ORDER BY code`,
	)
	if err != nil {
		return nil, fmt.Errorf("campusRepo.List: %w", err)
	}
	defer rows.Close()

	var campuses []*domain.Campus
	for rows.Next() {
		var c domain.Campus

		err = rows.Scan(&c.ID, &c.Code, &c.Name, &c.Colleges, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("campusRepo.List: scan: %w", err)
		}
		campuses = append(campuses, &c)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("campusRepo.List: rows: %w", err)
	}

	return campuses, nil
}
