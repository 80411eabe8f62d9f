package memory

import "context"

type txKey struct{}

func withTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, true)
}

func inTransaction(ctx context.Context) bool {
	v, ok := ctx.Value(txKey{}).(bool)
	return ok && v
}
