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

type ModalityRepo struct {
	pool *pgxpool.Pool
}

func NewModalityRepo(pool *pgxpool.Pool) *ModalityRepo {
	return &ModalityRepo{pool: pool}
}

const modalityColumns = `id, user_id, campus_id, college, title, modality_type, partner_agency, hosted_by,
	period, is_archived, created_at, updated_at`

func (r *ModalityRepo) Create(ctx context.Context, m *domain.Modality) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO modalities (`+modalityColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.UserID, m.CampusID, m.College, m.Title, m.ModalityType, m.PartnerAgency, m.HostedBy,
		m.Period, m.Archived, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return writeErr("modalityRepo.Create", err)
	}

	return nil
}

func (r *ModalityRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Modality, error) {
	m, err := scanModality(r.pool.QueryRow(ctx,
		`SELECT `+modalityColumns+` FROM modalities WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("modalityRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("modalityRepo.GetByID: %w", err)
	}

	return m, nil
}

func (r *ModalityRepo) Update(ctx context.Context, m *domain.Modality) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE modalities SET campus_id = $1, college = $2, title = $3, modality_type = $4,
		 partner_agency = $5, hosted_by = $6, period = $7, is_archived = $8, updated_at = now()
		 WHERE id = $9
		 RETURNING updated_at`,
		m.CampusID, m.College, m.Title, m.ModalityType,
		m.PartnerAgency, m.HostedBy, m.Period, m.Archived,
		m.ID,
	).Scan(&m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("modalityRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return writeErr("modalityRepo.Update", err)
	}

	return nil
}

func (r *ModalityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM modalities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("modalityRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("modalityRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ModalityRepo) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Modality, error) {
	where, args := submissionWhere(filter)
	rows, err := r.pool.Query(ctx, `SELECT `+modalityColumns+` FROM modalities`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("modalityRepo.List: %w", err)
	}
	defer rows.Close()

	var modalities []*domain.Modality
	for rows.Next() {
		m, err := scanModality(rows)
		if err != nil {
			return nil, fmt.Errorf("modalityRepo.List: scan: %w", err)
		}
		modalities = append(modalities, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("modalityRepo.List: rows: %w", err)
	}

	return modalities, nil
}

func scanModality(row pgx.Row) (*domain.Modality, error) {
	var m domain.Modality
	err := row.Scan(
		&m.ID, &m.UserID, &m.CampusID, &m.College, &m.Title, &m.ModalityType, &m.PartnerAgency, &m.HostedBy,
		&m.Period, &m.Archived, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with their own prefix
	}
	return &m, nil
}
