package audit

import (
	"slices"

	"github.com/gosuda/techtransfer/internal/domain"
)

// excludedFields never appear in a persisted snapshot.
var excludedFields = map[string]struct{}{ //nolint:gochecknoglobals // fixed exclusion set
	"created_at":        {},
	"updated_at":        {},
	"password":          {},
	"password_hash":     {},
	"remember_token":    {},
	"email_verified_at": {},
}

// ExcludedFields returns the sorted names stripped from every snapshot.
func ExcludedFields() []string {
	names := make([]string, 0, len(excludedFields))
	for n := range excludedFields {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func strip(v domain.Values) domain.Values {
	return v.Without(excludedFields)
}

// Verdict is the outcome of filtering a candidate event.
type Verdict string

const (
	Persist           Verdict = "persist"
	SkipEmptyUpdate   Verdict = "empty_update"
	SkipArchiveOnly   Verdict = "archive_only"
	SkipInsignificant Verdict = "insignificant"
	SkipExcludedOnly  Verdict = "excluded_only"
)

// DefaultPolicy treats creation, deletion and any update with changed fields
// as significant.
type DefaultPolicy struct{}

func (DefaultPolicy) AuditSignificant(ev *domain.ChangeEvent) bool {
	return ev.Action != domain.AuditActionUpdate || ev.After.Len() > 0
}

// Filter runs the suppression rules over ev in order and returns the
// sanitised event together with the verdict. The returned event is only
// meaningful when the verdict is Persist. A nil policy means DefaultPolicy.
func Filter(ev domain.ChangeEvent, policy domain.SignificancePolicy) (domain.ChangeEvent, Verdict) {
	if policy == nil {
		policy = DefaultPolicy{}
	}
	update := ev.Action == domain.AuditActionUpdate

	if update && ev.After.Len() == 0 {
		return ev, SkipEmptyUpdate
	}
	if update && ev.After.Len() == 1 && ev.After.Has(domain.ArchivedField) {
		return ev, SkipArchiveOnly
	}
	if !policy.AuditSignificant(&ev) {
		return ev, SkipInsignificant
	}

	ev.Before = strip(ev.Before)
	ev.After = strip(ev.After)

	if update && ev.After.Len() == 0 {
		return ev, SkipExcludedOnly
	}
	return ev, Persist
}
