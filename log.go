package destiin

import (
	"context"
	"fmt"

	"github.com/avohilabs/destiin/core"
	"github.com/avohilabs/destiin/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WriteLog persists an entry in the error log. The request ID found in ctx, if any, is attached.
func (app *App) WriteLog(ctx context.Context, level, title, message string, options ...core.LogOption) error {
	switch level {
	case "DEBUG":
	case "INFO":
	case "WARN":
	case "ERROR":
	case "FATAL":
	default:
		return fmt.Errorf("level should be either: debug, info, warn, error, fatal")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating new uuid : %w", err)
	}
	log := &domain.Log{
		ID:        id,
		Timestamp: app.Now(),
		Level:     level,
		Title:     title,
		Message:   message,
	}
	if requestID, ok := RequestIDFromContext(ctx); ok {
		options = append([]core.LogOption{core.LogWithRequestID(requestID)}, options...)
	}
	for _, option := range options {
		if err := option(log); err != nil {
			return fmt.Errorf("applying log option : %w", err)
		}
	}
	if err := app.Repo.InsertLog(ctx, log); err != nil {
		return fmt.Errorf("inserting log : %w", err)
	}
	return nil
}

// LogError records a failed operation under title, both in the structured log and in the error log.
// A failure to persist the entry is only reported to the structured log.
func (app *App) LogError(ctx context.Context, title string, err error, options ...core.LogOption) {
	fields := []zap.Field{zap.String("title", title), zap.Error(err)}
	if requestID, ok := RequestIDFromContext(ctx); ok {
		fields = append(fields, zap.Stringer("request_id", requestID))
	}
	app.Logger.Error("operation failed", fields...)

	options = append(options, core.LogWithError(err))
	if werr := app.WriteLog(context.WithoutCancel(ctx), "ERROR", title, err.Error(), options...); werr != nil {
		app.Logger.Warn("writing error log", zap.String("title", title), zap.Error(werr))
	}
}

// GetErrorLogs returns the newest error log entries first. A limit of 0 or less returns all of them.
func (app *App) GetErrorLogs(ctx context.Context, limit int) ([]*domain.Log, error) {
	logs, err := app.Repo.GetLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("getting logs : %w", err)
	}
	return logs, nil
}
