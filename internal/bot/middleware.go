package bot

import (
	"context"
	"time"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/logger"
)

// Middleware decorates the handler registered under name.
type Middleware func(name string, next HandlerFunc) HandlerFunc

// Chain applies middlewares so the first one is outermost.
func Chain(name string, h HandlerFunc, middlewares ...Middleware) HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](name, h)
	}
	return h
}

// LoggingMiddleware logs handler execution with timing and result info.
func LoggingMiddleware(log *logger.Logger) Middleware {
	return func(name string, next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) *Result {
			start := time.Now()

			log.DebugContext(ctx, "Handler started",
				"module", name,
				"param_count", len(req.Params),
			)

			res := next(ctx, req)

			attrs := []any{
				"module", name,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if res != nil {
				attrs = append(attrs,
					"has_rich", res.Rich != nil,
					"update_count", len(res.Updates),
					"redirect", res.Redirect,
				)
			}
			log.DebugContext(ctx, "Handler completed", attrs...)

			return res
		}
	}
}
