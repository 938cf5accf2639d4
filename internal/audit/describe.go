package audit

import (
	"fmt"

	"github.com/gosuda/techtransfer/internal/domain"
)

// Describe renders the sentence stored with a record that has no explicit
// description. subject may be nil for records about nothing in particular.
func Describe(actorName string, action domain.AuditAction, subject *domain.Ref) string {
	if actorName == "" {
		actorName = domain.SystemActorName
	}
	if subject == nil {
		return fmt.Sprintf("%s performed %s", actorName, action)
	}

	typ := subject.TypeName()
	switch action {
	case domain.AuditActionCreate:
		return fmt.Sprintf("%s created a new %s", actorName, typ)
	case domain.AuditActionUpdate:
		return fmt.Sprintf("%s updated %s #%s", actorName, typ, subject.ID)
	case domain.AuditActionDelete:
		return fmt.Sprintf("%s deleted %s #%s", actorName, typ, subject.ID)
	default:
		return fmt.Sprintf("%s performed %s on %s", actorName, action, typ)
	}
}

// ArchiveDescription names the archived entity by its display title.
func ArchiveDescription(actor *domain.Actor, e domain.Auditable) string {
	return fmt.Sprintf("%s archived %s %q", actor.DisplayName(), e.AuditRef().TypeName(), e.AuditTitle())
}

func authDescription(action domain.AuditAction, actor *domain.Actor) string {
	switch action {
	case domain.AuditActionLogin:
		return actor.DisplayName() + " logged in"
	case domain.AuditActionLogout:
		return actor.DisplayName() + " logged out"
	default:
		return Describe(actor.DisplayName(), action, nil)
	}
}
