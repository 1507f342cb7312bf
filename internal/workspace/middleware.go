package workspace

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/panekit/internal/log"
	"github.com/zjrosen/panekit/internal/tracing"
)

// Middleware wraps an UpdateHandler.
type Middleware func(UpdateHandler) UpdateHandler

// ChainMiddleware wraps handler so the first middleware is outermost:
// ChainMiddleware(h, a, b) runs a(b(h)).
func ChainMiddleware(handler UpdateHandler, middlewares ...Middleware) UpdateHandler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// LoggingMiddleware logs every update with its duration.
func LoggingMiddleware() Middleware {
	return func(next UpdateHandler) UpdateHandler {
		return UpdateHandlerFunc(func(ctx context.Context, u *Update) error {
			start := time.Now()
			err := next.Handle(ctx, u)
			if err != nil {
				log.Warn(log.CatWorkspace, "update failed",
					"update", u.Name, "update_id", u.ID, "duration", time.Since(start), "error", err)
				return err
			}
			log.Debug(log.CatWorkspace, "update completed",
				"update", u.Name, "update_id", u.ID, "duration", time.Since(start))
			return nil
		})
	}
}

// TracingMiddleware records a workspace.update span per update. A nil tracer
// makes it a pass-through.
func TracingMiddleware(tracer trace.Tracer) Middleware {
	if tracer == nil {
		return func(next UpdateHandler) UpdateHandler { return next }
	}
	return func(next UpdateHandler) UpdateHandler {
		return UpdateHandlerFunc(func(ctx context.Context, u *Update) error {
			ctx, span := tracer.Start(ctx, tracing.SpanWorkspaceUpdate,
				trace.WithAttributes(
					attribute.String(tracing.AttrUpdateName, u.Name),
					attribute.String(tracing.AttrUpdateID, u.ID),
				))
			defer span.End()

			err := next.Handle(ctx, u)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return err
		})
	}
}
