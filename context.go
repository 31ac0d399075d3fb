package vellum

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vellum-ws/vellum/domain"
)

type contextKey string

const (
	// RequestIDKey is the context key for the request ID (uuid.UUID). The same ID is attached to every log row written while handling the request
	RequestIDKey contextKey = "RequestID"
	// RequestTimeKey is the context key for the request timestamp (time.Time)
	RequestTimeKey contextKey = "RequestTime"
	// SessionKey is the context key for the resolved session (*domain.Session), set by the access middleware on protected routes
	SessionKey contextKey = "Session"
	// UserKey is the context key for the authenticated user (*domain.User), set by the access middleware on protected routes
	UserKey contextKey = "User"
)

// ContextWithRequestID returns a new request with a request ID in the context
func ContextWithRequestID(req *http.Request, requestId uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), RequestIDKey, requestId)
	return req.WithContext(ctx)
}

// RequestIDFromContext returns the request ID from the context if it exists
func RequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(RequestIDKey).(uuid.UUID)
	return id, ok
}

// ContextWithRequestTime returns a new request with the request time in the context
func ContextWithRequestTime(req *http.Request, requestTime time.Time) *http.Request {
	ctx := context.WithValue(req.Context(), RequestTimeKey, requestTime)
	return req.WithContext(ctx)
}

// RequestTimeFromContext returns the request time from the context if it exists
func RequestTimeFromContext(ctx context.Context) (time.Time, bool) {
	timestamp, ok := ctx.Value(RequestTimeKey).(time.Time)
	return timestamp, ok
}

// ContextWithSession returns a new request with the session in the context
func ContextWithSession(req *http.Request, session *domain.Session) *http.Request {
	ctx := context.WithValue(req.Context(), SessionKey, session)
	return req.WithContext(ctx)
}

// SessionFromContext returns the session from the context if it exists
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*domain.Session)
	return session, ok
}

// ContextWithUser returns a new request with the authenticated user in the context
func ContextWithUser(req *http.Request, user *domain.User) *http.Request {
	ctx := context.WithValue(req.Context(), UserKey, user)
	return req.WithContext(ctx)
}

// UserFromContext returns the authenticated user from the context if it exists
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok
}
