package usecase

import "context"

// Caller — кто вызывает инструмент: сессия клиента и, если есть, токен для API магазина.
type Caller struct {
	SessionID string
	Token     string
}

type callerKey struct{}

func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

func CallerFromCtx(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(Caller)
	return caller, ok
}
