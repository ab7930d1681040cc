package models

import (
	"context"

	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

// Caller is the authenticated principal extracted from the transport layer.
type Caller struct {
	UserID   uuid.UUID
	IsDriver bool
}

type callerCtxKey struct{}

var callerKey = &callerCtxKey{}

// WithCaller injects the caller into the context.
func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFromContext returns the caller, nil when the request is anonymous.
func CallerFromContext(ctx context.Context) *Caller {
	c, ok := ctx.Value(callerKey).(*Caller)
	if !ok {
		return nil
	}
	return c
}
