package audit

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/gosuda/techtransfer/internal/domain"
)

// NameLookup resolves the display name of an actor.
type NameLookup func(ctx context.Context, actor domain.Ref) (string, error)

// ActorNames derives descriptions at read time for records stored without
// one. Resolved names are cached for ttl.
type ActorNames struct {
	cache  *lru.LRU[domain.Ref, string]
	lookup NameLookup
}

func NewActorNames(size int, ttl time.Duration, lookup NameLookup) *ActorNames {
	return &ActorNames{
		cache:  lru.NewLRU[domain.Ref, string](size, nil, ttl),
		lookup: lookup,
	}
}

// Name returns the display name of actor. Actors that can no longer be
// resolved are shown as "<Type> #<id>".
func (n *ActorNames) Name(ctx context.Context, actor domain.Ref) string {
	if name, ok := n.Lookup(ctx, actor); ok {
		return name
	}
	return actor.TypeName() + " #" + actor.ID.String()
}

// Lookup returns the cached or freshly resolved name of actor. Only
// successful lookups are cached.
func (n *ActorNames) Lookup(ctx context.Context, actor domain.Ref) (string, bool) {
	if name, ok := n.cache.Get(actor); ok {
		return name, true
	}
	name, err := n.lookup(ctx, actor)
	if err != nil || name == "" {
		return "", false
	}
	n.cache.Add(actor, name)
	return name, true
}

// Describe returns the stored description of rec, or derives one from the
// actor name, the action and the subject type.
func (n *ActorNames) Describe(ctx context.Context, rec *domain.AuditRecord) string {
	if rec.Description != nil && *rec.Description != "" {
		return *rec.Description
	}

	actorName := domain.SystemActorName
	if actor, ok := rec.ActorRef(); ok {
		actorName = n.Name(ctx, actor)
	}
	var subject *domain.Ref
	if s, ok := rec.Subject(); ok {
		subject = &s
	}
	return Describe(actorName, rec.Action, subject)
}

// Forget drops a cached name, e.g. after the actor was renamed.
func (n *ActorNames) Forget(actor domain.Ref) {
	n.cache.Remove(actor)
}
