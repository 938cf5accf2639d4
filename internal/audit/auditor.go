// Package audit records lifecycle changes of auditable entities into an
// append-only trail.
//
// Mutations reach the trail through two paths. Organic field edits flow
// through the interceptor hooks (Created, Updated, Deleted), which hand a
// candidate event to Filter before anything is written. Workflow actions
// such as archive, login and logout are written explicitly and bypass the
// filter. Both paths strip the excluded fields when the record is built.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/techtransfer/internal/domain"
)

// ErrNotRecorded wraps store failures returned after the business mutation
// has already been committed.
var ErrNotRecorded = errors.New("audit: record not persisted") //nolint:gochecknoglobals // sentinel error

// FailurePolicy selects what happens when the store rejects a record.
type FailurePolicy string

const (
	// FailurePropagate returns the store error to the caller of the mutation.
	FailurePropagate FailurePolicy = "propagate"
	// FailureLog logs and counts the failure and reports success.
	FailureLog FailurePolicy = "log"
)

// ParseFailurePolicy accepts "propagate" and "log".
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(s); p {
	case FailurePropagate, FailureLog:
		return p, nil
	default:
		return "", fmt.Errorf("audit: unknown failure policy %q", s)
	}
}

// Auditor is the write side of the audit trail.
type Auditor struct {
	repo    domain.AuditRepository
	sinks   []Sink
	metrics *Metrics
	failure FailurePolicy
	names   *ActorNames
	now     func() time.Time
}

type Option func(*Auditor)

// WithSinks adds best-effort consumers of every persisted record.
func WithSinks(sinks ...Sink) Option {
	return func(a *Auditor) { a.sinks = append(a.sinks, sinks...) }
}

func WithMetrics(m *Metrics) Option {
	return func(a *Auditor) { a.metrics = m }
}

func WithFailurePolicy(p FailurePolicy) Option {
	return func(a *Auditor) { a.failure = p }
}

// WithActorNames resolves actor display names from n when descriptions are
// written, so a rename shows up before the actor's token is refreshed. The
// name carried by the actor is used when n cannot resolve it.
func WithActorNames(n *ActorNames) Option {
	return func(a *Auditor) { a.names = n }
}

// WithClock overrides the timestamp source for created_at.
func WithClock(now func() time.Time) Option {
	return func(a *Auditor) { a.now = now }
}

func New(repo domain.AuditRepository, opts ...Option) *Auditor {
	a := &Auditor{
		repo:    repo,
		failure: FailurePropagate,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Created runs after e has been inserted.
func (a *Auditor) Created(ctx context.Context, actor *domain.Actor, e domain.Auditable) error {
	return a.intercept(ctx, e, domain.ChangeEvent{
		Action:  domain.AuditActionCreate,
		Actor:   actor,
		Subject: e.AuditRef(),
		After:   e.AuditAttributes(),
	})
}

// Updated runs after e has been updated. before and after hold only the
// changed fields; callers skip the hook entirely when nothing changed.
func (a *Auditor) Updated(ctx context.Context, actor *domain.Actor, e domain.Auditable, before, after domain.Values) error {
	return a.intercept(ctx, e, domain.ChangeEvent{
		Action:  domain.AuditActionUpdate,
		Actor:   actor,
		Subject: e.AuditRef(),
		Before:  before,
		After:   after,
	})
}

// Deleted runs after e has been removed. e is the state read just before
// deletion.
func (a *Auditor) Deleted(ctx context.Context, actor *domain.Actor, e domain.Auditable) error {
	return a.intercept(ctx, e, domain.ChangeEvent{
		Action:  domain.AuditActionDelete,
		Actor:   actor,
		Subject: e.AuditRef(),
		Before:  e.AuditAttributes(),
	})
}

func (a *Auditor) intercept(ctx context.Context, e domain.Auditable, ev domain.ChangeEvent) error {
	policy, _ := e.(domain.SignificancePolicy)
	ev, verdict := Filter(ev, policy)
	if verdict != Persist {
		a.metrics.incSuppressed(verdict)
		return nil
	}
	_, err := a.persist(ctx, ev)
	return err
}

// Record writes an explicit event. Update events still pass through the
// filter with the default policy; any other action is written as given,
// minus the excluded fields. A nil record with a nil error means the event
// was suppressed, or the store failed under FailureLog.
func (a *Auditor) Record(ctx context.Context, ev domain.ChangeEvent) (*domain.AuditRecord, error) {
	if ev.Action == domain.AuditActionUpdate {
		var verdict Verdict
		ev, verdict = Filter(ev, nil)
		if verdict != Persist {
			a.metrics.incSuppressed(verdict)
			return nil, nil
		}
	}
	return a.persist(ctx, ev)
}

// LogArchive writes the single record of the archive workflow.
func (a *Auditor) LogArchive(ctx context.Context, actor *domain.Actor, subject domain.Ref, description string) error {
	_, err := a.persist(ctx, domain.ChangeEvent{
		Action:      domain.AuditActionArchive,
		Actor:       actor,
		Subject:     subject,
		Before:      domain.Values{{Name: domain.ArchivedField, Value: false}},
		After:       domain.Values{{Name: domain.ArchivedField, Value: true}},
		Description: description,
	})
	return err
}

// LogAuth records a login or logout of u. The user is both actor and
// subject.
func (a *Auditor) LogAuth(ctx context.Context, action domain.AuditAction, u *domain.User) error {
	actor := u.Actor()
	_, err := a.persist(ctx, domain.ChangeEvent{
		Action:      action,
		Actor:       actor,
		Subject:     u.AuditRef(),
		Description: authDescription(action, actor),
	})
	return err
}

func (a *Auditor) persist(ctx context.Context, ev domain.ChangeEvent) (*domain.AuditRecord, error) {
	ev.Actor = a.resolveActor(ctx, ev.Actor)
	rec := newRecord(ev, a.now())

	// An update record always carries at least one changed field.
	if rec.Action == domain.AuditActionUpdate && rec.AfterValues.Len() == 0 {
		a.metrics.incSuppressed(SkipExcludedOnly)
		return nil, nil
	}

	id, err := a.repo.Append(ctx, rec)
	if err != nil {
		a.metrics.incWriteFailure()
		if a.failure == FailureLog {
			log.Error().Err(err).
				Str("action", string(rec.Action)).
				Str("subject_type", deref(rec.SubjectType)).
				Msg("audit: record not persisted")
			return nil, nil
		}
		return nil, fmt.Errorf("audit.Auditor.persist: %w: %w", ErrNotRecorded, err)
	}
	rec.ID = id

	a.metrics.incWritten(rec.Action, deref(rec.SubjectType))
	a.publish(ctx, rec)
	return rec, nil
}

// resolveActor returns actor with its current display name when an
// ActorNames resolver is configured.
func (a *Auditor) resolveActor(ctx context.Context, actor *domain.Actor) *domain.Actor {
	if a.names == nil || actor == nil {
		return actor
	}
	name, ok := a.names.Lookup(ctx, actor.Ref())
	if !ok || name == actor.Name {
		return actor
	}
	resolved := *actor
	resolved.Name = name
	return &resolved
}

func (a *Auditor) publish(ctx context.Context, rec *domain.AuditRecord) {
	for _, s := range a.sinks {
		if err := s.Publish(ctx, rec); err != nil {
			a.metrics.incSinkFailure(s.Name())
			log.Warn().Err(err).
				Str("sink", s.Name()).
				Int64("audit_id", rec.ID).
				Msg("audit: sink delivery failed")
		}
	}
}

// newRecord is the only place an AuditRecord is assembled for writing.
func newRecord(ev domain.ChangeEvent, now time.Time) *domain.AuditRecord {
	rec := &domain.AuditRecord{
		Action:       ev.Action,
		BeforeValues: strip(ev.Before),
		AfterValues:  strip(ev.After),
		CreatedAt:    now,
	}

	if ev.Actor != nil {
		typ := ev.Actor.Ref().TypeName()
		id := ev.Actor.ID
		rec.ActorType = &typ
		rec.ActorID = &id
	}

	var subject *domain.Ref
	if ev.Subject.ID != uuid.Nil || ev.Subject.Kind != "" {
		s := ev.Subject
		typ := s.TypeName()
		rec.SubjectType = &typ
		rec.SubjectID = &s.ID
		subject = &s
	}

	desc := ev.Description
	if desc == "" {
		desc = Describe(ev.Actor.DisplayName(), ev.Action, subject)
	}
	rec.Description = &desc

	return rec
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
