package http

import (
	"net/http"
	"time"

	"github.com/fjod/ishop4u/internal/api"
	"github.com/fjod/ishop4u/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// zapLogFormatter plugs zap into chi's RequestLogger so access logs and
// recovered panics go through the application logger.
type zapLogFormatter struct {
	logger *zap.Logger
}

func (f *zapLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &zapLogEntry{logger: f.logger.With(
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)}
}

type zapLogEntry struct {
	logger *zap.Logger
}

func (e *zapLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.Int("bytes", bytes),
		zap.Duration("elapsed", elapsed),
	}
	switch {
	case status >= http.StatusInternalServerError:
		e.logger.Error("request served", fields...)
	case status >= http.StatusBadRequest:
		e.logger.Warn("request served", fields...)
	default:
		e.logger.Info("request served", fields...)
	}
}

func (e *zapLogEntry) Panic(v interface{}, stack []byte) {
	e.logger.Error("panic recovered", zap.Any("panic", v), zap.ByteString("stack", stack))
}

// RequestLogger logs every request with zap.
func RequestLogger(l *zap.Logger) func(http.Handler) http.Handler {
	return middleware.RequestLogger(&zapLogFormatter{logger: l})
}

// RequestContext stores a request-scoped logger in the context and forwards
// the request id to the remote store.
func RequestContext(l *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := middleware.GetReqID(ctx)
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
				ctx = api.WithRequestID(ctx, requestID)
			}
			ctx = logger.WithContext(ctx, l.With(zap.String("request_id", requestID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
