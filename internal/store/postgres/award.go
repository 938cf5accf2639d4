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

type AwardRepo struct {
	pool *pgxpool.Pool
}

func NewAwardRepo(pool *pgxpool.Pool) *AwardRepo {
	return &AwardRepo{pool: pool}
}

const awardColumns = `id, user_id, campus_id, college, title, awarding_body, level, date_received,
	is_archived, created_at, updated_at`

func (r *AwardRepo) Create(ctx context.Context, a *domain.Award) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO awards (`+awardColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.UserID, a.CampusID, a.College, a.Title, a.AwardingBody, a.Level,
		dateOnly(a.DateReceived), a.Archived, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return writeErr("awardRepo.Create", err)
	}

	return nil
}

func (r *AwardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Award, error) {
	a, err := scanAward(r.pool.QueryRow(ctx,
		`SELECT `+awardColumns+` FROM awards WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("awardRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("awardRepo.GetByID: %w", err)
	}

	return a, nil
}

func (r *AwardRepo) Update(ctx context.Context, a *domain.Award) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE awards SET campus_id = $1, college = $2, title = $3, awarding_body = $4, level = $5,
		 date_received = $6, is_archived = $7, updated_at = now()
		 WHERE id = $8
		 RETURNING updated_at`,
		a.CampusID, a.College, a.Title, a.AwardingBody, a.Level,
		dateOnly(a.DateReceived), a.Archived, a.ID,
	).Scan(&a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("awardRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return writeErr("awardRepo.Update", err)
	}

	return nil
}

func (r *AwardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM awards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("awardRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("awardRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *AwardRepo) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Award, error) {
	where, args := submissionWhere(filter)
	rows, err := r.pool.Query(ctx, `SELECT `+awardColumns+` FROM awards`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("awardRepo.List: %w", err)
	}
	defer rows.Close()

	var awards []*domain.Award
	for rows.Next() {
		a, err := scanAward(rows)
		if err != nil {
			return nil, fmt.Errorf("awardRepo.List: scan: %w", err)
		}
		awards = append(awards, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("awardRepo.List: rows: %w", err)
	}

	return awards, nil
}

func scanAward(row pgx.Row) (*domain.Award, error) {
	var a domain.Award
	err := row.Scan(
		&a.ID, &a.UserID, &a.CampusID, &a.College, &a.Title, &a.AwardingBody, &a.Level,
		&a.DateReceived, &a.Archived, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with their own prefix
	}
	return &a, nil
}
