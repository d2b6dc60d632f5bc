package shared

import "context"

type actorContextKey struct{}

// ContextWithActor stores the recording employee's name in context.
func ContextWithActor(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, name)
}

// ActorFromContext extracts the recording employee's name from context.
func ActorFromContext(ctx context.Context) string {
	name, _ := ctx.Value(actorContextKey{}).(string)
	return name
}
