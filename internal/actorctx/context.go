// Package actorctx carries the acting principal (a user or a system job)
// through call chains so activity records can attribute changes.
package actorctx

import "context"

type actorKey struct{}

type Actor struct {
	Type string
	ID   string
}

const (
	TypeUser   = "user"
	TypeSystem = "system"
)

func WithActor(ctx context.Context, actorType, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, Actor{Type: actorType, ID: actorID})
}

func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
