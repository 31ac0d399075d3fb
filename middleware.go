package vellum

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"

	"github.com/vellum-ws/vellum/core"
	"github.com/vellum-ws/vellum/domain"
)

var (
	// ErrAuthRequired is returned when a protected route is hit without a valid session
	ErrAuthRequired = errors.New("authentication required")

	// ErrAdminRequired is returned when a protected route is hit by a non-admin user
	ErrAdminRequired = errors.New("admin privileges required")
)

// Middleware wraps a handler with additional per-request behavior.
type Middleware func(http.Handler) http.Handler

// chain applies middlewares to a handler, first middleware outermost.
func chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// withRequestContext assigns each request an ID and a timestamp. The ID is
// echoed in the X-Request-ID response header and attached to every log row
// written while handling the request.
func (app *App) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		requestId, err := uuid.NewV7()
		if err != nil {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		req = ContextWithRequestID(req, requestId)
		req = ContextWithRequestTime(req, time.Now())
		w.Header().Set("X-Request-ID", requestId.String())
		next.ServeHTTP(w, req)
	})
}

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// withAccessLog writes one log row per request after the handler returns.
func (app *App) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)

		options := []func(log *domain.Log) error{}
		if requestId, ok := RequestIDFromContext(req.Context()); ok {
			options = append(options, core.LogWithRequestID(requestId))
		}
		duration := time.Duration(0)
		if requestTime, ok := RequestTimeFromContext(req.Context()); ok {
			duration = time.Since(requestTime)
		}
		options = append(options, core.LogWithContext(map[string]any{
			"method":      req.Method,
			"path":        req.URL.Path,
			"status":      rec.status,
			"duration_ms": duration.Milliseconds(),
		}))
		app.WriteLog("INFO", fmt.Sprintf("%s %s %d", req.Method, req.URL.Path, rec.status), options...)
	})
}

// withRecovery turns handler panics into 500 responses instead of crashing
// the server.
func (app *App) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				options := []func(log *domain.Log) error{}
				if requestId, ok := RequestIDFromContext(req.Context()); ok {
					options = append(options, core.LogWithRequestID(requestId))
				}
				app.WriteLog("ERROR", fmt.Sprintf("panic handling %s %s : %v", req.Method, req.URL.Path, recovered), options...)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, req)
	})
}

// withAccess enforces the access policy. Requests denied by the policy need
// a session that resolves to an admin user; the session and user are placed
// in the request context for the handlers.
func (app *App) withAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if app.Policy.Matches(req) {
			next.ServeHTTP(w, req)
			return
		}

		user, session, err := app.authenticate(req)
		if err != nil {
			http.Redirect(w, req, "/login", http.StatusSeeOther)
			return
		}
		if !user.Admin {
			http.Error(w, ErrAdminRequired.Error(), http.StatusForbidden)
			return
		}
		req = ContextWithSession(req, session)
		req = ContextWithUser(req, user)
		next.ServeHTTP(w, req)
	})
}

// authenticate resolves the session cookie to a user.
func (app *App) authenticate(req *http.Request) (*domain.User, *domain.Session, error) {
	cookie, err := req.Cookie(app.Config.CookieName)
	if err != nil {
		return nil, nil, ErrAuthRequired
	}
	session, err := app.Repo.GetSessionByToken(cookie.Value)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving session : %w", err)
	}
	if session.Expired() {
		return nil, nil, ErrAuthRequired
	}
	user, err := app.Repo.GetUserByID(session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving session user : %w", err)
	}
	return user, session, nil
}

// compressWriter wraps a http.ResponseWriter and compresses the body. The
// decision is deferred to the first write: a handler that declared a
// Content-Length has sized the exact bytes it will send, and compressing
// those would make the server truncate the stream at the declared length,
// so such responses pass through uncompressed.
type compressWriter struct {
	http.ResponseWriter
	encoding    string
	newEncoder  func(io.Writer) io.WriteCloser
	encoder     io.WriteCloser
	wroteHeader bool
}

func (cw *compressWriter) WriteHeader(status int) {
	if !cw.wroteHeader {
		cw.wroteHeader = true
		if cw.Header().Get("Content-Length") == "" {
			cw.Header().Set("Content-Encoding", cw.encoding)
			cw.encoder = cw.newEncoder(cw.ResponseWriter)
		}
	}
	cw.ResponseWriter.WriteHeader(status)
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}
	if cw.encoder == nil {
		return cw.ResponseWriter.Write(b)
	}
	return cw.encoder.Write(b)
}

func (cw *compressWriter) Close() error {
	if cw.encoder == nil {
		return nil
	}
	return cw.encoder.Close()
}

// withCompression negotiates brotli (preferred) or gzip response compression
// based on the Accept-Encoding header.
func (app *App) withCompression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		acceptEncoding := req.Header.Get("Accept-Encoding")
		cw := &compressWriter{ResponseWriter: w}
		switch {
		case strings.Contains(acceptEncoding, "br"):
			cw.encoding = "br"
			cw.newEncoder = func(w io.Writer) io.WriteCloser { return brotli.NewWriter(w) }
		case strings.Contains(acceptEncoding, "gzip"):
			cw.encoding = "gzip"
			cw.newEncoder = func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) }
		default:
			next.ServeHTTP(w, req)
			return
		}
		defer cw.Close()
		next.ServeHTTP(cw, req)
	})
}
