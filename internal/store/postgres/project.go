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

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

const projectColumns = `id, user_id, campus_id, college, name, description, category, budget, status,
	start_date, end_date, is_archived, created_at, updated_at`

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO projects (`+projectColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.UserID, p.CampusID, p.College, p.Name, p.Description, p.Category, p.Budget,
		p.Status, dateOnly(p.StartDate), optDate(p.EndDate), p.Archived, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return writeErr("projectRepo.Create", err)
	}

	return nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("projectRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("projectRepo.GetByID: %w", err)
	}

	return p, nil
}

func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE projects SET campus_id = $1, college = $2, name = $3, description = $4, category = $5,
		 budget = $6, status = $7, start_date = $8, end_date = $9, is_archived = $10, updated_at = now()
		 WHERE id = $11
		 RETURNING updated_at`,
		p.CampusID, p.College, p.Name, p.Description, p.Category,
		p.Budget, p.Status, dateOnly(p.StartDate), optDate(p.EndDate), p.Archived,
		p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("projectRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return writeErr("projectRepo.Update", err)
	}

	return nil
}

func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("projectRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("projectRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ProjectRepo) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Project, error) {
	where, args := submissionWhere(filter)
	rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("projectRepo.List: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("projectRepo.List: scan: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("projectRepo.List: rows: %w", err)
	}

	return projects, nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID, &p.UserID, &p.CampusID, &p.College, &p.Name, &p.Description, &p.Category, &p.Budget,
		&p.Status, &p.StartDate, &p.EndDate, &p.Archived, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with their own prefix
	}
	return &p, nil
}
