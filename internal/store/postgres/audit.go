package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/techtransfer/internal/domain"
)

// AuditRepo is append-only: no statement in this package updates or deletes
// audit_log rows. Reads order by id, which follows insert order regardless of
// the clock that stamped created_at.
type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

const auditColumns = `id, actor_type, actor_id, action, subject_type, subject_id,
	before_values, after_values, description, created_at`

func (r *AuditRepo) Append(ctx context.Context, rec *domain.AuditRecord) (int64, error) {
	before, err := valuesJSON(rec.BeforeValues)
	if err != nil {
		return 0, fmt.Errorf("auditRepo.Append: marshal before: %w", err)
	}
	after, err := valuesJSON(rec.AfterValues)
	if err != nil {
		return 0, fmt.Errorf("auditRepo.Append: marshal after: %w", err)
	}

	var id int64
	err = r.pool.QueryRow(ctx,
		`INSERT INTO audit_log (actor_type, actor_id, action, subject_type, subject_id,
		 before_values, after_values, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		rec.ActorType, rec.ActorID, rec.Action, rec.SubjectType, rec.SubjectID,
		before, after, rec.Description, rec.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("auditRepo.Append: %w", err)
	}

	return id, nil
}

// RecordsFor runs its query each time the sequence is ranged over and streams
// rows until the caller stops.
func (r *AuditRepo) RecordsFor(ctx context.Context, subject domain.Ref) iter.Seq2[*domain.AuditRecord, error] {
	return func(yield func(*domain.AuditRecord, error) bool) {
		rows, err := r.pool.Query(ctx,
			`SELECT `+auditColumns+` FROM audit_log
			 WHERE subject_type = $1 AND subject_id = $2
			 ORDER BY id DESC`,
			subject.TypeName(), subject.ID,
		)
		if err != nil {
			yield(nil, fmt.Errorf("auditRepo.RecordsFor: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanAuditRecord(rows)
			if err != nil {
				yield(nil, fmt.Errorf("auditRepo.RecordsFor: scan: %w", err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("auditRepo.RecordsFor: rows: %w", err))
		}
	}
}

func (r *AuditRepo) LatestFor(ctx context.Context, subject domain.Ref) (*domain.AuditRecord, error) {
	rec, err := scanAuditRecord(r.pool.QueryRow(ctx,
		`SELECT `+auditColumns+` FROM audit_log
		 WHERE subject_type = $1 AND subject_id = $2
		 ORDER BY id DESC
		 LIMIT 1`,
		subject.TypeName(), subject.ID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("auditRepo.LatestFor: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("auditRepo.LatestFor: %w", err)
	}

	return rec, nil
}

func (r *AuditRepo) RecordsByActor(ctx context.Context, actor domain.Ref, limit, offset int) ([]*domain.AuditRecord, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+auditColumns+` FROM audit_log
		 WHERE actor_type = $1 AND actor_id = $2
		 ORDER BY id DESC
		 LIMIT $3 OFFSET $4`,
		actor.TypeName(), actor.ID, limit, max(offset, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.RecordsByActor: %w", err)
	}
	defer rows.Close()

	return scanAuditRecords(rows, "auditRepo.RecordsByActor")
}

func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditRecord, error) {
	var conds []string
	var args []any
	if filter.Action != "" {
		args = append(args, filter.Action)
		conds = append(conds, fmt.Sprintf("action = $%d", len(args)))
	}
	if filter.SubjectType != "" {
		args = append(args, filter.SubjectType)
		conds = append(conds, fmt.Sprintf("subject_type = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	args = append(args, limit, max(filter.Offset, 0))

	query := `SELECT ` + auditColumns + ` FROM audit_log`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(` ORDER BY id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.List: %w", err)
	}
	defer rows.Close()

	return scanAuditRecords(rows, "auditRepo.List")
}

func scanAuditRecords(rows pgx.Rows, caller string) ([]*domain.AuditRecord, error) {
	records := []*domain.AuditRecord{}
	for rows.Next() {
		rec, err := scanAuditRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return records, nil
}

func scanAuditRecord(row pgx.Row) (*domain.AuditRecord, error) {
	var rec domain.AuditRecord
	var before, after []byte

	if err := row.Scan(
		&rec.ID, &rec.ActorType, &rec.ActorID, &rec.Action, &rec.SubjectType, &rec.SubjectID,
		&before, &after, &rec.Description, &rec.CreatedAt,
	); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with their own prefix
	}
	if before != nil {
		if err := json.Unmarshal(before, &rec.BeforeValues); err != nil {
			return nil, fmt.Errorf("unmarshal before_values: %w", err)
		}
	}
	if after != nil {
		if err := json.Unmarshal(after, &rec.AfterValues); err != nil {
			return nil, fmt.Errorf("unmarshal after_values: %w", err)
		}
	}

	return &rec, nil
}

// valuesJSON encodes v for a JSON column, keeping field order. A nil snapshot is stored as SQL
// NULL rather than a JSON null.
func valuesJSON(v domain.Values) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
