package destiin

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/avohilabs/destiin/domain"
	"github.com/avohilabs/destiin/receipt"
	"go.uber.org/zap"
)

// WithOptions applies a series of configuration functions to the App.
// It stops at and returns the first error.
func (app *App) WithOptions(options ...func(*App) error) error {
	for _, option := range options {
		err := option(app)
		if err != nil {
			return fmt.Errorf("applying option on destiin : %w", err)
		}
	}
	return nil
}

// WithConfig sets the configuration. The files directory and, unless WithReceiptParser is used,
// the OCR client are derived from it.
func WithConfig(cfg *Config) func(*App) error {
	return func(app *App) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		app.Config = cfg
		app.FilesDir = cfg.FilesDir
		return nil
	}
}

// WithRepo sets the document store.
func WithRepo(repo domain.TxStore) func(*App) error {
	return func(app *App) error {
		if repo == nil {
			return errors.New("repository is nil")
		}
		app.Repo = repo
		return nil
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) func(*App) error {
	return func(app *App) error {
		if logger == nil {
			return errors.New("logger is nil")
		}
		app.Logger = logger
		return nil
	}
}

// WithReceiptParser replaces the OCR client.
func WithReceiptParser(parser receipt.Parser) func(*App) error {
	return func(app *App) error {
		if parser == nil {
			return errors.New("receipt parser is nil")
		}
		app.Parser = parser
		return nil
	}
}

// WithFilesDir sets the directory uploaded files are written to, creating it if needed.
func WithFilesDir(dir string) func(*App) error {
	return func(app *App) error {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating files dir %s: %w", dir, err)
		}
		app.FilesDir = dir
		return nil
	}
}

// WithClock replaces the clock used for timestamps and naming series.
func WithClock(now func() time.Time) func(*App) error {
	return func(app *App) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		app.now = now
		return nil
	}
}
