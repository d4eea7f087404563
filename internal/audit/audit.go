// Package audit carries the acting identity of a request so that writes can
// be attributed in created_by/updated_by columns.
package audit

import "context"

type contextKey string

const actorKey contextKey = "actor"

// SystemActor is stamped on writes that happen outside a request, e.g. from
// seed or migration tooling.
const SystemActor = "system"

// ContextWithActor returns a new context carrying the given actor identity.
func ContextWithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom retrieves the actor from the context, falling back to SystemActor.
func ActorFrom(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey).(string); ok && v != "" {
		return v
	}
	return SystemActor
}
