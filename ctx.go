package auth

import (
	"context"

	"github.com/goliatone/go-tenant-auth/middleware/authware"
	"github.com/uptrace/bun"
)

// Actor is the authenticated principal/workspace pair bound to a request.
type Actor = authware.Actor

var actorCtxKey = &contextKey{"actor"}
var scopedDBCtxKey = &contextKey{"scoped-db"}

type contextKey struct {
	name string
}

// WithActor sets the Actor in the given context
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey, actor)
}

// ActorFromContext finds the actor from the context.
func ActorFromContext(ctx context.Context) (*Actor, bool) {
	raw, ok := ctx.Value(actorCtxKey).(*Actor)
	return raw, ok
}

// WithScopedDB sets the workspace-scoped connection in the given context.
// Only TenantContextBinder should call this.
func WithScopedDB(ctx context.Context, db bun.IDB) context.Context {
	return context.WithValue(ctx, scopedDBCtxKey, db)
}

// ScopedDB extracts the workspace-scoped connection for the current
// request. Handlers must use this connection, and only this connection, for
// workspace-owned data.
func ScopedDB(ctx context.Context) (bun.IDB, bool) {
	raw, ok := ctx.Value(scopedDBCtxKey).(bun.IDB)
	return raw, ok
}
