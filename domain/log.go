package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LogRepository defines the interface for managing the persistent error log.
// It provides methods for persisting and retrieving log entries.
type LogRepository interface {
	// InsertLog saves a new log entry to the repository.
	InsertLog(ctx context.Context, log *Log) error
	// GetLogs retrieves log entries, newest first. A limit of zero or less returns every entry.
	GetLogs(ctx context.Context, limit int) ([]*Log, error)
}

// Log represents a single log entry, containing information about an event that occurred in the application.
type Log struct {
	ID        uuid.UUID      // Unique identifier for the log entry.
	Timestamp time.Time      // The time at which the log entry was created.
	Level     string         // The severity level of the log (e.g., INFO, WARN, ERROR).
	Title     string         // Short title naming the operation that failed, e.g. "create_activity API Error".
	Message   string         // The main content of the log message.
	Context   map[string]any // A map of additional key-value data for structured logging.
	RequestID *uuid.UUID     // An optional ID of the HTTP request that produced the entry.
}
