package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"rabfront/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestLogger tags each request with an id (reusing an inbound
// X-Request-Id) and stores a request-scoped zap logger in its context.
func RequestLogger(log *zap.Logger) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		e.Response.Header().Set(requestIDHeader, id)

		reqLog := log.With(
			zap.String("request_id", id),
			zap.String("method", e.Request.Method),
			zap.String("path", e.Request.URL.Path),
		)
		ctx := logger.WithRequestID(e.Request.Context(), id)
		ctx = logger.WithContext(ctx, reqLog)
		e.Request = e.Request.WithContext(ctx)

		started := time.Now()
		err := e.Next()
		reqLog.Debug("http.request", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return err
	}
}
