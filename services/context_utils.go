package services

import (
	"context"
	"time"
)

const backgroundTaskTimeout = 30 * time.Second

// persistentContext keeps request values but outlives the request's cancellation.
func persistentContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}

func backgroundContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(persistentContext(ctx), backgroundTaskTimeout)
}
