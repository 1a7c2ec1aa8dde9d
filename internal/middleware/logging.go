package middleware

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

type loggingWriter struct {
	http.ResponseWriter
	statusCode int
	hijacked   bool
}

func (w *loggingWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *loggingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	w.hijacked = true
	return h.Hijack()
}

// Logging tags every request with an id and logs it once it is handled.
// Handlers find the tagged entry with [Logger].
func Logging(log logrus.FieldLogger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			entry := log.WithField("requestID", requestID)
			ctx := context.WithValue(r.Context(), CtxLogger, entry)
			ctx = context.WithValue(ctx, CtxRequestID, requestID)

			wrapped := &loggingWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			entry.WithFields(logrus.Fields{
				"statusCode": wrapped.statusCode,
				"hijacked":   wrapped.hijacked,
				"remoteAddr": r.RemoteAddr,
				"xffHeader":  r.Header.Get("X-Forwarded-For"),
				"method":     r.Method,
				"uri":        r.URL.RequestURI(),
				"durationMs": time.Since(start).Milliseconds(),
			}).Info("handled request")
		})
	}
}

// Logger returns the request's log entry, or fallback outside of [Logging].
func Logger(ctx context.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if entry, ok := ctx.Value(CtxLogger).(logrus.FieldLogger); ok {
		return entry
	}
	return fallback
}
