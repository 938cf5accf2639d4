package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gosuda/techtransfer/internal/domain"
)

// Tracked decorates a repository so that every committed mutation runs the
// matching interceptor hook. Snapshots are taken from the entity as passed
// in and from a fresh read of the stored row, so repositories must return
// copies from GetByID.
type Tracked[T domain.Auditable] struct {
	auditor *Auditor
	repo    domain.Repository[T]
}

func Track[T domain.Auditable](a *Auditor, repo domain.Repository[T]) *Tracked[T] {
	return &Tracked[T]{auditor: a, repo: repo}
}

func (t *Tracked[T]) Create(ctx context.Context, actor *domain.Actor, e T) error {
	if err := t.repo.Create(ctx, e); err != nil {
		return fmt.Errorf("audit.Tracked.Create: %w", err)
	}
	return t.auditor.Created(ctx, actor, e)
}

// Update persists e and records the fields whose values differ from the
// stored row. Nothing is recorded when no field changed.
func (t *Tracked[T]) Update(ctx context.Context, actor *domain.Actor, e T) error {
	prior, err := t.repo.GetByID(ctx, e.AuditRef().ID)
	if err != nil {
		return fmt.Errorf("audit.Tracked.Update: load prior: %w", err)
	}
	before := prior.AuditAttributes()
	after := e.AuditAttributes()

	if err := t.repo.Update(ctx, e); err != nil {
		return fmt.Errorf("audit.Tracked.Update: %w", err)
	}

	old, changed := domain.ChangedFields(before, after)
	if changed.Len() == 0 {
		return nil
	}
	return t.auditor.Updated(ctx, actor, e, old, changed)
}

func (t *Tracked[T]) Delete(ctx context.Context, actor *domain.Actor, id uuid.UUID) error {
	e, err := t.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("audit.Tracked.Delete: load: %w", err)
	}
	if err := t.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("audit.Tracked.Delete: %w", err)
	}
	return t.auditor.Deleted(ctx, actor, e)
}

// CredentialVerifier reconfirms the acting user's password.
type CredentialVerifier interface {
	VerifyPassword(ctx context.Context, userID uuid.UUID, password string) error
}

// Archiver adds the archive workflow to a tracked repository.
type Archiver[T domain.Archivable] struct {
	*Tracked[T]
	verifier CredentialVerifier
}

func TrackArchivable[T domain.Archivable](a *Auditor, repo domain.Repository[T], verifier CredentialVerifier) *Archiver[T] {
	return &Archiver[T]{Tracked: Track(a, repo), verifier: verifier}
}

// Archive reconfirms the actor's password, sets the archived flag and writes
// exactly one archive record. The flag flip itself goes through the tracked
// update, whose archive-only change the filter skips. A failed
// reconfirmation returns the verifier's error and changes nothing.
func (ar *Archiver[T]) Archive(ctx context.Context, actor *domain.Actor, id uuid.UUID, password string) (T, error) {
	var zero T
	if actor == nil || actor.Kind != domain.KindUser {
		return zero, fmt.Errorf("audit.Archiver.Archive: %w", domain.ErrUnauthorized)
	}
	actor = ar.auditor.resolveActor(ctx, actor)
	if err := ar.verifier.VerifyPassword(ctx, actor.ID, password); err != nil {
		return zero, fmt.Errorf("audit.Archiver.Archive: %w", err)
	}

	e, err := ar.repo.GetByID(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("audit.Archiver.Archive: %w", err)
	}
	if e.IsArchived() {
		return zero, fmt.Errorf("audit.Archiver.Archive: already archived: %w", domain.ErrConflict)
	}

	e.SetArchived(true)
	if err := ar.Update(ctx, actor, e); err != nil {
		return zero, fmt.Errorf("audit.Archiver.Archive: %w", err)
	}
	if err := ar.auditor.LogArchive(ctx, actor, e.AuditRef(), ArchiveDescription(actor, e)); err != nil {
		return zero, fmt.Errorf("audit.Archiver.Archive: %w", err)
	}
	return e, nil
}
