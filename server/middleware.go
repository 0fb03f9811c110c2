package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/avohilabs/destiin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request ID back to the client.
const RequestIDHeader = "X-Request-Id"

// statusRecorder remembers the status code and size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withRequestID assigns a UUIDv7 to every request, stores it in the context and echoes it in RequestIDHeader.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.NewV7()
		if err != nil {
			id = uuid.New()
		}
		w.Header().Set(RequestIDHeader, id.String())
		next.ServeHTTP(w, r.WithContext(destiin.ContextWithRequestID(r.Context(), id)))
	})
}

// withLogging logs every request once it has been served and turns panics into a 500.
func withLogging(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w}

		defer func() {
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)),
			}
			if id, ok := destiin.RequestIDFromContext(r.Context()); ok {
				fields = append(fields, zap.Stringer("request_id", id))
			}
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				logger.Error("handler panicked", append(fields, zap.Any("panic", p), zap.Stack("stack"))...)
				if recorder.status == 0 {
					writeException(recorder, http.StatusInternalServerError, excInternal, "Internal Server Error")
				}
				return
			}
			logger.Info("request",
				append(fields, zap.Int("status", recorder.status), zap.Int("bytes", recorder.bytes))...)
		}()

		next.ServeHTTP(recorder, r)
	})
}

// credentials extracts the API key and secret from "token key:secret" or HTTP basic auth.
func credentials(r *http.Request) (key, secret string, ok bool) {
	if key, secret, ok := r.BasicAuth(); ok {
		return key, secret, true
	}
	scheme, value, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "token") {
		return "", "", false
	}
	key, secret, found = strings.Cut(strings.TrimSpace(value), ":")
	return key, secret, found && key != "" && secret != ""
}

// requireAPIKey rejects requests whose credentials do not match a configured API key.
func (s *Server) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, secret, ok := credentials(r)
		if ok {
			want, known := s.apiKeys[key]
			if known && subtle.ConstantTimeCompare([]byte(want), []byte(secret)) == 1 {
				next(w, r)
				return
			}
		}
		s.logger.Warn("rejected unauthenticated request", zap.String("path", r.URL.Path), zap.String("api_key", key))
		writeException(w, http.StatusForbidden, excPermission, "Not permitted")
	}
}
