package http

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/vendops-lab/vigil/pkg/utils/logging"
	"github.com/vendops-lab/vigil/pkg/utils/request_id"
)

type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, reqID := request_id.Generate(r.Context())
		logger := logging.From(ctx).With("request_id", reqID)

		attrs := []any{
			slog.Any("method", r.Method),
			slog.Any("path", r.URL.Path),
			slog.Any("query", r.URL.Query()),
			slog.Any("headers", r.Header),
		}

		if logger.Enabled(ctx, slog.LevelDebug) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				logger.Warn("failed to read request body", "error", err)
			} else {
				attrs = append(attrs, slog.Any("body", string(body)))
			}
			r.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		sw := &statusResponseWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r.WithContext(logging.With(ctx, logger)))
		attrs = append(attrs, slog.Int("status", sw.status))

		logger.Info("Access Log", attrs...)
	})
}
