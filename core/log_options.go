// Package core provides fundamental utilities shared by the Destiin packages.
// This file contains option functions for customizing error log entries.
package core

import (
	"github.com/avohilabs/destiin/domain"
	"github.com/google/uuid"
)

// LogOption customizes a log entry before it is persisted.
type LogOption func(log *domain.Log) error

// LogWithContext is an option to add a context map to a log entry.
// Keys already present on the entry are overwritten.
func LogWithContext(context map[string]any) LogOption {
	return func(log *domain.Log) error {
		if log.Context == nil {
			log.Context = make(map[string]any, len(context))
		}
		for k, v := range context {
			log.Context[k] = v
		}
		return nil
	}
}

// LogWithRequestID is an option to associate a log entry with the HTTP request that produced it.
func LogWithRequestID(id uuid.UUID) LogOption {
	return func(log *domain.Log) error {
		log.RequestID = &id
		return nil
	}
}

// LogWithError is an option to record the error chain in the entry context.
func LogWithError(err error) LogOption {
	return func(log *domain.Log) error {
		if err == nil {
			return nil
		}
		return LogWithContext(map[string]any{"error": err.Error()})(log)
	}
}
