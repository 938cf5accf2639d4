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

type ResolutionRepo struct {
	pool *pgxpool.Pool
}

func NewResolutionRepo(pool *pgxpool.Pool) *ResolutionRepo {
	return &ResolutionRepo{pool: pool}
}

const resolutionColumns = `id, user_id, campus_id, college, resolution_number, title, effectivity, expiration,
	is_archived, created_at, updated_at`

func (r *ResolutionRepo) Create(ctx context.Context, res *domain.Resolution) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO resolutions (`+resolutionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		res.ID, res.UserID, res.CampusID, res.College, res.ResolutionNumber, res.Title,
		dateOnly(res.Effectivity), optDate(res.Expiration), res.Archived, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return writeErr("resolutionRepo.Create", err)
	}

	return nil
}

func (r *ResolutionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Resolution, error) {
	res, err := scanResolution(r.pool.QueryRow(ctx,
		`SELECT `+resolutionColumns+` FROM resolutions WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("resolutionRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolutionRepo.GetByID: %w", err)
	}

	return res, nil
}

func (r *ResolutionRepo) Update(ctx context.Context, res *domain.Resolution) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE resolutions SET campus_id = $1, college = $2, resolution_number = $3, title = $4,
		 effectivity = $5, expiration = $6, is_archived = $7, updated_at = now()
		 WHERE id = $8
		 RETURNING updated_at`,
		res.CampusID, res.College, res.ResolutionNumber, res.Title,
		dateOnly(res.Effectivity), optDate(res.Expiration), res.Archived,
		res.ID,
	).Scan(&res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("resolutionRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return writeErr("resolutionRepo.Update", err)
	}

	return nil
}

func (r *ResolutionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resolutions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("resolutionRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("resolutionRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ResolutionRepo) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Resolution, error) {
	where, args := submissionWhere(filter)
	rows, err := r.pool.Query(ctx, `SELECT `+resolutionColumns+` FROM resolutions`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("resolutionRepo.List: %w", err)
	}
	defer rows.Close()

	var resolutions []*domain.Resolution
	for rows.Next() {
		res, err := scanResolution(rows)
		if err != nil {
			return nil, fmt.Errorf("resolutionRepo.List: scan: %w", err)
		}
		resolutions = append(resolutions, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("resolutionRepo.List: rows: %w", err)
	}

	return resolutions, nil
}

func scanResolution(row pgx.Row) (*domain.Resolution, error) {
	var res domain.Resolution
	err := row.Scan(
		&res.ID, &res.UserID, &res.CampusID, &res.College, &res.ResolutionNumber, &res.Title,
		&res.Effectivity, &res.Expiration, &res.Archived, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with their own prefix
	}
	return &res, nil
}
