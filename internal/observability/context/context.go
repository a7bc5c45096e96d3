package context

import (
	"context"
	"strings"
)

type ctxKey string

const (
	requestIDKey ctxKey = "obs_request_id"
	actorKey     ctxKey = "obs_actor"
	contractKey  ctxKey = "obs_contract_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, strings.TrimSpace(requestID))
}

func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithActor stores the operator identity supplied by the caller.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, strings.TrimSpace(actor))
}

func ActorFromContext(ctx context.Context) string {
	return stringValue(ctx, actorKey)
}

func WithContractID(ctx context.Context, contractID string) context.Context {
	return context.WithValue(ctx, contractKey, strings.TrimSpace(contractID))
}

func ContractIDFromContext(ctx context.Context) string {
	return stringValue(ctx, contractKey)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
