package domain

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityKind names a type of entity that can appear as an audit subject or
// actor. Unknown names are represented by KindExternal plus Ref.Name.
type EntityKind string

const (
	KindUser                 EntityKind = "User"
	KindProject              EntityKind = "Project"
	KindAward                EntityKind = "Award"
	KindInternationalPartner EntityKind = "InternationalPartner"
	KindModality             EntityKind = "Modality"
	KindResolution           EntityKind = "Resolution"
	KindImpactAssessment     EntityKind = "ImpactAssessment"
	KindExternal             EntityKind = "External"
)

var knownKinds = []EntityKind{ //nolint:gochecknoglobals // enum table
	KindUser,
	KindProject,
	KindAward,
	KindInternationalPartner,
	KindModality,
	KindResolution,
	KindImpactAssessment,
}

// Known reports whether k is one of the entity kinds defined by this service.
func (k EntityKind) Known() bool {
	for _, known := range knownKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseEntityKind resolves canonical names ("InternationalPartner") and URL
// slugs ("international_partner", "international-partners"). The second
// return value is false when the name is not a known kind.
func ParseEntityKind(s string) (EntityKind, bool) {
	norm := normalizeKindName(s)
	for _, k := range knownKinds {
		if normalizeKindName(string(k)) == norm {
			return k, true
		}
	}
	return KindExternal, false
}

func normalizeKindName(s string) string {
	s = strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
	if strings.HasSuffix(s, "ies") {
		return strings.TrimSuffix(s, "ies") + "y"
	}
	return strings.TrimSuffix(s, "s")
}

// Ref is a polymorphic reference to an entity instance. Name carries the raw
// type name when Kind is KindExternal.
type Ref struct {
	Kind EntityKind
	Name string
	ID   uuid.UUID
}

// NewRef builds a reference from a stored type name, mapping unknown names to
// KindExternal.
func NewRef(typeName string, id uuid.UUID) Ref {
	if k, ok := ParseEntityKind(typeName); ok {
		return Ref{Kind: k, ID: id}
	}
	return Ref{Kind: KindExternal, Name: typeName, ID: id}
}

// TypeName is the string persisted in the *_type columns.
func (r Ref) TypeName() string {
	if r.Kind == KindExternal && r.Name != "" {
		return r.Name
	}
	return string(r.Kind)
}

// Actor is the acting identity of a mutation. A nil *Actor means System.
type Actor struct {
	Kind EntityKind
	ID   uuid.UUID
	Name string
}

// Ref returns the polymorphic reference of the actor.
func (a *Actor) Ref() Ref {
	return Ref{Kind: a.Kind, ID: a.ID}
}

// Is reports whether the actor is the entity referenced by r.
func (a *Actor) Is(r Ref) bool {
	return a != nil && a.Kind == r.Kind && a.ID == r.ID
}

// DisplayName returns the actor's name, or "System" for a nil actor.
func (a *Actor) DisplayName() string {
	if a == nil || a.Name == "" {
		return SystemActorName
	}
	return a.Name
}

// SystemActorName is used wherever an action has no acting identity.
const SystemActorName = "System"

// AuditAction tags what happened. Values outside the constants are allowed
// as free-form actions.
type AuditAction string

const (
	AuditActionCreate  AuditAction = "create"
	AuditActionUpdate  AuditAction = "update"
	AuditActionDelete  AuditAction = "delete"
	AuditActionArchive AuditAction = "archive"
	AuditActionLogin   AuditAction = "login"
	AuditActionLogout  AuditAction = "logout"
)

// ArchivedField is the snapshot name of the soft-archival flag.
const ArchivedField = "is_archived"

// AuditRecord is an immutable, append-only entry of the audit trail.
type AuditRecord struct {
	ID           int64       `json:"id"`
	ActorType    *string     `json:"actor_type"`
	ActorID      *uuid.UUID  `json:"actor_id"`
	Action       AuditAction `json:"action"`
	SubjectType  *string     `json:"subject_type"`
	SubjectID    *uuid.UUID  `json:"subject_id"`
	BeforeValues Values      `json:"before_values"`
	AfterValues  Values      `json:"after_values"`
	Description  *string     `json:"description"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Subject returns the subject reference, if the record has one.
func (r *AuditRecord) Subject() (Ref, bool) {
	if r.SubjectType == nil || r.SubjectID == nil {
		return Ref{}, false
	}
	return NewRef(*r.SubjectType, *r.SubjectID), true
}

// ActorRef returns the actor reference, if the record has one.
func (r *AuditRecord) ActorRef() (Ref, bool) {
	if r.ActorType == nil || r.ActorID == nil {
		return Ref{}, false
	}
	return NewRef(*r.ActorType, *r.ActorID), true
}

// ChangeEvent is a candidate audit event produced by a lifecycle hook.
type ChangeEvent struct {
	Action  AuditAction
	Actor   *Actor
	Subject Ref
	Before  Values
	After   Values
	// Description, when set, replaces the generated sentence.
	Description string
}

// Auditable is implemented by entities that emit audit records on their own
// create, update, and delete.
type Auditable interface {
	AuditRef() Ref
	AuditAttributes() Values
	AuditTitle() string
}

// SignificancePolicy lets an entity type veto audit events the generic
// filter would otherwise persist.
type SignificancePolicy interface {
	AuditSignificant(ev *ChangeEvent) bool
}

// Archivable entities support the soft-archive workflow.
type Archivable interface {
	Auditable
	IsArchived() bool
	SetArchived(archived bool)
}

// AuditFilter narrows admin listings of the audit trail.
type AuditFilter struct {
	Action      AuditAction
	SubjectType string
	Limit       int
	Offset      int
}

// AuditRepository persists audit records. It deliberately has no update or
// delete operations.
type AuditRepository interface {
	Append(ctx context.Context, rec *AuditRecord) (int64, error)
	// RecordsFor yields every record about subject, newest first. Each range
	// over the returned sequence reads the store again.
	RecordsFor(ctx context.Context, subject Ref) iter.Seq2[*AuditRecord, error]
	// LatestFor returns ErrNotFound when subject has no records.
	LatestFor(ctx context.Context, subject Ref) (*AuditRecord, error)
	RecordsByActor(ctx context.Context, actor Ref, limit, offset int) ([]*AuditRecord, error)
	List(ctx context.Context, filter AuditFilter) ([]*AuditRecord, error)
}
