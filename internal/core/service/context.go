package service

import "context"

type actorKey struct{}

// ContextWithActor records the acting username on the context so privileged
// mutations can attribute their audit events.
func ContextWithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorKey{}, username)
}

func actorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return "unknown"
}
