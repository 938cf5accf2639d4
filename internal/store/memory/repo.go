package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/techtransfer/internal/domain"
)

// Repo is a generic entity repository keyed by the entity's audit ID.
type Repo[T domain.Auditable] struct {
	mu    sync.RWMutex
	items map[uuid.UUID]T
	clone func(T) T
}

// NewRepo creates a repository that stores and returns clones made by clone.
func NewRepo[T domain.Auditable](clone func(T) T) *Repo[T] {
	return &Repo[T]{items: make(map[uuid.UUID]T), clone: clone}
}

func (r *Repo[T]) Create(_ context.Context, e T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := e.AuditRef().ID
	if _, ok := r.items[id]; ok {
		return fmt.Errorf("memory.Repo.Create: %w", domain.ErrConflict)
	}
	r.items[id] = r.clone(e)
	return nil
}

func (r *Repo[T]) GetByID(_ context.Context, id uuid.UUID) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("memory.Repo.GetByID: %w", domain.ErrNotFound)
	}
	return r.clone(e), nil
}

func (r *Repo[T]) Update(_ context.Context, e T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := e.AuditRef().ID
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("memory.Repo.Update: %w", domain.ErrNotFound)
	}
	r.items[id] = r.clone(e)
	return nil
}

func (r *Repo[T]) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("memory.Repo.Delete: %w", domain.ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

// All returns clones of every stored entity in no particular order.
func (r *Repo[T]) All() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, 0, len(r.items))
	for _, e := range r.items {
		out = append(out, r.clone(e))
	}
	return out
}

// CloneProject is the clone function for project repositories.
func CloneProject(p *domain.Project) *domain.Project {
	c := *p
	c.EndDate = clonePtr(p.EndDate)
	return &c
}

// CloneUser is the clone function for user repositories.
func CloneUser(u *domain.User) *domain.User {
	c := *u
	c.CampusID = clonePtr(u.CampusID)
	c.EmailVerifiedAt = clonePtr(u.EmailVerifiedAt)
	return &c
}
