package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/fintrack/pkg/logger"
)

// RequestIDHeader echoes chi's request id back to the client
const RequestIDHeader = "X-Request-Id"

// errorBody keeps the body of error responses so the log line can carry the reason
type errorBody struct {
	chimiddleware.WrapResponseWriter
	buf bytes.Buffer
}

func (e *errorBody) Write(b []byte) (int, error) {
	if e.Status() >= 400 {
		e.buf.Write(b)
	}
	return e.WrapResponseWriter.Write(b)
}

// errorAttrs pulls the "error" and "code" fields out of a JSON error body
func errorAttrs(body []byte) []any {
	var obj struct {
		Error string `json:"error"`
		Code  string `json:"code"`
		Field string `json:"field"`
	}
	if json.Unmarshal(body, &obj) != nil || obj.Error == "" {
		return nil
	}
	attrs := []any{"error", obj.Error}
	if obj.Code != "" {
		attrs = append(attrs, "error_code", obj.Code)
	}
	if obj.Field != "" {
		attrs = append(attrs, "field", obj.Field)
	}
	return attrs
}

// Logger returns a request logging middleware. 5xx log at error, 4xx at warn.
func Logger(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := &errorBody{WrapResponseWriter: chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)}
			start := time.Now()

			if reqID := chimiddleware.GetReqID(r.Context()); reqID != "" {
				r = r.WithContext(context.WithValue(r.Context(), logger.RequestIDKey, reqID))
				w.Header().Set(RequestIDHeader, reqID)
			}

			defer func() {
				status := ww.Status()
				attrs := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"status", status,
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
				}

				reqLog := log.WithContext(r.Context())
				switch {
				case status >= 500:
					reqLog.Error("HTTP request", append(attrs, errorAttrs(ww.buf.Bytes())...)...)
				case status >= 400:
					reqLog.Warn("HTTP request", append(attrs, errorAttrs(ww.buf.Bytes())...)...)
				default:
					reqLog.Debug("HTTP request", attrs...)
				}
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
