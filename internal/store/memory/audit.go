// Package memory holds process-local implementations of the domain
// repositories. Reads return copies so callers can never alter stored state.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/gosuda/techtransfer/internal/domain"
)

type AuditRepo struct {
	mu      sync.RWMutex
	records []*domain.AuditRecord
	nextID  int64
}

func NewAuditRepo() *AuditRepo {
	return &AuditRepo{nextID: 1}
}

func (r *AuditRepo) Append(_ context.Context, rec *domain.AuditRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneRecord(rec)
	stored.ID = r.nextID
	r.nextID++
	r.records = append(r.records, stored)
	return stored.ID, nil
}

func (r *AuditRepo) RecordsFor(_ context.Context, subject domain.Ref) iter.Seq2[*domain.AuditRecord, error] {
	return func(yield func(*domain.AuditRecord, error) bool) {
		for _, rec := range r.matching(func(rec *domain.AuditRecord) bool {
			s, ok := rec.Subject()
			return ok && s.TypeName() == subject.TypeName() && s.ID == subject.ID
		}) {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func (r *AuditRepo) LatestFor(ctx context.Context, subject domain.Ref) (*domain.AuditRecord, error) {
	for rec, err := range r.RecordsFor(ctx, subject) {
		if err != nil {
			return nil, fmt.Errorf("memory.AuditRepo.LatestFor: %w", err)
		}
		return rec, nil
	}
	return nil, fmt.Errorf("memory.AuditRepo.LatestFor: %w", domain.ErrNotFound)
}

func (r *AuditRepo) RecordsByActor(_ context.Context, actor domain.Ref, limit, offset int) ([]*domain.AuditRecord, error) {
	out := r.matching(func(rec *domain.AuditRecord) bool {
		a, ok := rec.ActorRef()
		return ok && a.TypeName() == actor.TypeName() && a.ID == actor.ID
	})
	return page(out, limit, offset), nil
}

func (r *AuditRepo) List(_ context.Context, filter domain.AuditFilter) ([]*domain.AuditRecord, error) {
	out := r.matching(func(rec *domain.AuditRecord) bool {
		if filter.Action != "" && rec.Action != filter.Action {
			return false
		}
		if filter.SubjectType != "" && (rec.SubjectType == nil || *rec.SubjectType != filter.SubjectType) {
			return false
		}
		return true
	})
	return page(out, filter.Limit, filter.Offset), nil
}

// Len returns the number of stored records.
func (r *AuditRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// matching returns copies of the records accepted by keep, newest first by
// insertion order.
func (r *AuditRepo) matching(keep func(*domain.AuditRecord) bool) []*domain.AuditRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.AuditRecord
	for _, rec := range r.records {
		if keep(rec) {
			out = append(out, cloneRecord(rec))
		}
	}
	slices.SortFunc(out, func(a, b *domain.AuditRecord) int {
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func page[T any](items []T, limit, offset int) []T {
	offset = max(offset, 0)
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func cloneRecord(rec *domain.AuditRecord) *domain.AuditRecord {
	c := *rec
	c.ActorType = clonePtr(rec.ActorType)
	c.ActorID = clonePtr(rec.ActorID)
	c.SubjectType = clonePtr(rec.SubjectType)
	c.SubjectID = clonePtr(rec.SubjectID)
	c.Description = clonePtr(rec.Description)
	c.BeforeValues = slices.Clone(rec.BeforeValues)
	c.AfterValues = slices.Clone(rec.AfterValues)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
