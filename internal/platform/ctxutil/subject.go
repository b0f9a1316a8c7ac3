package ctxutil

import "context"

type subjectKey struct{}

// WithSubject stores the authenticated user id taken from a verified token.
func WithSubject(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, subjectKey{}, userID)
}

func Subject(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(subjectKey{}).(int64)
	return id, ok
}
