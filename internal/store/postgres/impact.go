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

type ImpactAssessmentRepo struct {
	pool *pgxpool.Pool
}

func NewImpactAssessmentRepo(pool *pgxpool.Pool) *ImpactAssessmentRepo {
	return &ImpactAssessmentRepo{pool: pool}
}

const impactColumns = `id, user_id, campus_id, college, project_id, title, beneficiary, geographic_coverage,
	num_beneficiaries, is_archived, created_at, updated_at`

func (r *ImpactAssessmentRepo) Create(ctx context.Context, a *domain.ImpactAssessment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO impact_assessments (`+impactColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.UserID, a.CampusID, a.College, a.ProjectID, a.Title, a.Beneficiary, a.GeographicCoverage,
		a.NumBeneficiaries, a.Archived, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return writeErr("impactRepo.Create", err)
	}

	return nil
}

func (r *ImpactAssessmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ImpactAssessment, error) {
	a, err := scanImpact(r.pool.QueryRow(ctx,
		`SELECT `+impactColumns+` FROM impact_assessments WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("impactRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("impactRepo.GetByID: %w", err)
	}

	return a, nil
}

func (r *ImpactAssessmentRepo) Update(ctx context.Context, a *domain.ImpactAssessment) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE impact_assessments SET campus_id = $1, college = $2, project_id = $3, title = $4,
		 beneficiary = $5, geographic_coverage = $6, num_beneficiaries = $7, is_archived = $8,
		 updated_at = now()
		 WHERE id = $9
		 RETURNING updated_at`,
		a.CampusID, a.College, a.ProjectID, a.Title,
		a.Beneficiary, a.GeographicCoverage, a.NumBeneficiaries, a.Archived,
		a.ID,
	).Scan(&a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("impactRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return writeErr("impactRepo.Update", err)
	}

	return nil
}

func (r *ImpactAssessmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM impact_assessments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("impactRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("impactRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ImpactAssessmentRepo) List(ctx context.Context, filter domain.ListFilter) ([]*domain.ImpactAssessment, error) {
	where, args := submissionWhere(filter)
	rows, err := r.pool.Query(ctx, `SELECT `+impactColumns+` FROM impact_assessments`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("impactRepo.List: %w", err)
	}
	defer rows.Close()

	var impacts []*domain.ImpactAssessment
	for rows.Next() {
		a, err := scanImpact(rows)
		if err != nil {
			return nil, fmt.Errorf("impactRepo.List: scan: %w", err)
		}
		impacts = append(impacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("impactRepo.List: rows: %w", err)
	}

	return impacts, nil
}

func scanImpact(row pgx.Row) (*domain.ImpactAssessment, error) {
	var a domain.ImpactAssessment
	err := row.Scan(
		&a.ID, &a.UserID, &a.CampusID, &a.College, &a.ProjectID, &a.Title, &a.Beneficiary, &a.GeographicCoverage,
		&a.NumBeneficiaries, &a.Archived, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with their own prefix
	}
	return &a, nil
}
