package http

import "context"

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "requestID"
	ctxKeyRoute     ctxKey = "route"
	ctxKeyVersion   ctxKey = "version"
)

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

func requestIDInContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

func routeFromContext(ctx context.Context) string {
	route, _ := ctx.Value(ctxKeyRoute).(string)
	return route
}

func routeInContext(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, ctxKeyRoute, route)
}

func versionFromContext(ctx context.Context) string {
	version, _ := ctx.Value(ctxKeyVersion).(string)
	return version
}

func versionInContext(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, ctxKeyVersion, version)
}
