package postgres

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gosuda/techtransfer/internal/domain"
)

const defaultListLimit = 500

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// dateOnly truncates to the calendar date stored in DATE columns.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func optDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := dateOnly(*t)
	return &d
}

// writeErr maps constraint violations to domain errors.
func writeErr(caller string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", caller, domain.ErrConflict)
		case "23503", "23514":
			return fmt.Errorf("%s: %s: %w", caller, pgErr.ConstraintName, domain.ErrValidation)
		}
	}
	return fmt.Errorf("%s: %w", caller, err)
}

// submissionWhere renders the WHERE clause of a submission listing and the
// LIMIT/OFFSET placeholders that follow it.
func submissionWhere(f domain.ListFilter) (string, []any) {
	var conds []string
	var args []any

	if f.OwnerID != nil {
		args = append(args, *f.OwnerID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.CampusID != nil {
		args = append(args, *f.CampusID)
		conds = append(conds, fmt.Sprintf("campus_id = $%d", len(args)))
	}
	if !f.IncludeArchived {
		conds = append(conds, "is_archived = false")
	}

	limit := f.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	args = append(args, limit, max(f.Offset, 0))

	var b strings.Builder
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	fmt.Fprintf(&b, " ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return b.String(), args
}
