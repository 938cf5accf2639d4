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

type InternationalPartnerRepo struct {
	pool *pgxpool.Pool
}

func NewInternationalPartnerRepo(pool *pgxpool.Pool) *InternationalPartnerRepo {
	return &InternationalPartnerRepo{pool: pool}
}

const partnerColumns = `id, user_id, campus_id, college, agency_partner, location, activity_conducted,
	start_date, end_date, is_archived, created_at, updated_at`

func (r *InternationalPartnerRepo) Create(ctx context.Context, p *domain.InternationalPartner) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO international_partners (`+partnerColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.UserID, p.CampusID, p.College, p.AgencyPartner, p.Location, p.ActivityConducted,
		dateOnly(p.StartDate), optDate(p.EndDate), p.Archived, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return writeErr("partnerRepo.Create", err)
	}

	return nil
}

func (r *InternationalPartnerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.InternationalPartner, error) {
	p, err := scanPartner(r.pool.QueryRow(ctx,
		`SELECT `+partnerColumns+` FROM international_partners WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("partnerRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("partnerRepo.GetByID: %w", err)
	}

	return p, nil
}

func (r *InternationalPartnerRepo) Update(ctx context.Context, p *domain.InternationalPartner) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE international_partners SET campus_id = $1, college = $2, agency_partner = $3,
		 location = $4, activity_conducted = $5, start_date = $6, end_date = $7, is_archived = $8,
		 updated_at = now()
		 WHERE id = $9
		 RETURNING updated_at`,
		p.CampusID, p.College, p.AgencyPartner,
		p.Location, p.ActivityConducted, dateOnly(p.StartDate), optDate(p.EndDate), p.Archived,
		p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("partnerRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return writeErr("partnerRepo.Update", err)
	}

	return nil
}

func (r *InternationalPartnerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM international_partners WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("partnerRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("partnerRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *InternationalPartnerRepo) List(ctx context.Context, filter domain.ListFilter) ([]*domain.InternationalPartner, error) {
	where, args := submissionWhere(filter)
	rows, err := r.pool.Query(ctx, `SELECT `+partnerColumns+` FROM international_partners`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("partnerRepo.List: %w", err)
	}
	defer rows.Close()

	var partners []*domain.InternationalPartner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("partnerRepo.List: scan: %w", err)
		}
		partners = append(partners, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("partnerRepo.List: rows: %w", err)
	}

	return partners, nil
}

func scanPartner(row pgx.Row) (*domain.InternationalPartner, error) {
	var p domain.InternationalPartner
	err := row.Scan(
		&p.ID, &p.UserID, &p.CampusID, &p.College, &p.AgencyPartner, &p.Location, &p.ActivityConducted,
		&p.StartDate, &p.EndDate, &p.Archived, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with their own prefix
	}
	return &p, nil
}
