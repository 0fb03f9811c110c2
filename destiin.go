// Package destiin implements the travel and expense services of the Destiin platform:
// employee activity tracking, travel bookings, travel request workflow provisioning
// and receipt uploads that turn into expense claims.
package destiin

import (
	"fmt"
	"time"

	"github.com/avohilabs/destiin/domain"
	"github.com/avohilabs/destiin/receipt"
	"go.uber.org/zap"
)

// App is the application service. It owns every business rule and is shared by the HTTP server and the CLI.
type App struct {
	Config   *Config          // Service configuration
	Repo     domain.TxStore   // Document store
	Logger   *zap.Logger      // Structured logger, defaults to a no-op logger
	Parser   receipt.Parser   // OCR client used by receipt uploads
	FilesDir string           // Directory backing the /files URL space
	now      func() time.Time // Clock, replaceable in tests
	files    fileUsers        // Uploads holding stored files
}

// New creates an App and applies the provided options. Options are applied in order,
// so WithConfig should come before options that override individual settings.
func New(options ...func(*App) error) (*App, error) {
	app := &App{
		Config: DefaultConfig(),
		Logger: zap.NewNop(),
		now:    time.Now,
	}
	if err := app.WithOptions(options...); err != nil {
		return nil, err
	}
	if app.Repo == nil {
		return nil, fmt.Errorf("a repository is required")
	}
	if app.FilesDir == "" {
		app.FilesDir = app.Config.FilesDir
	}
	if app.Parser == nil && app.Config.OCR.URL != "" {
		app.Parser = receipt.NewClient(app.Config.OCR.URL,
			receipt.WithTimeout(app.Config.OCR.Timeout),
			receipt.WithLogger(app.Logger),
			receipt.WithDebug(app.Config.Debug),
		)
	}
	return app, nil
}

// Now returns the current time according to the App clock, truncated to microseconds
// so values survive a round trip through the store unchanged.
func (app *App) Now() time.Time {
	return app.now().UTC().Truncate(time.Microsecond)
}
