package apifilev1

import (
	"context"

	"github.com/fulldump/btrievedb/service"
)

const ContextServicerKey = "a7c0e3f4-2b1d-4e5f-9c8a-6d1e2f3a4b5c"

func SetServicer(ctx context.Context, s service.Servicer) context.Context {
	return context.WithValue(ctx, ContextServicerKey, s)
}

func GetServicer(ctx context.Context) service.Servicer {
	return ctx.Value(ContextServicerKey).(service.Servicer)
}
