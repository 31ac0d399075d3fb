// Package core provides fundamental utilities for the Vellum site engine.
// This file contains option functions for customizing log entries.
package core

import (
	"github.com/google/uuid"
	"github.com/vellum-ws/vellum/domain"
)

// LogWithContext is an option to add a context map to a log entry.
func LogWithContext(context map[string]any) func(log *domain.Log) error {
	return func(log *domain.Log) error {
		log.Context = context
		return nil
	}
}

// LogWithRequestID is an option to associate a log entry with an HTTP request ID.
func LogWithRequestID(id uuid.UUID) func(log *domain.Log) error {
	return func(log *domain.Log) error {
		log.RequestID = &id
		return nil
	}
}

// LogWithHookID is an option to associate a log entry with a hook ID.
func LogWithHookID(id uuid.UUID) func(log *domain.Log) error {
	return func(log *domain.Log) error {
		log.HookID = &id
		return nil
	}
}
