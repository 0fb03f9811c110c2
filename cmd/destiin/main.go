// Command destiin runs the Destiin travel and expense service and its maintenance tasks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/avohilabs/destiin"
	"github.com/avohilabs/destiin/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// cli holds the persistent flags and the state shared by every subcommand.
type cli struct {
	configDir string
	verbose   bool
	logger    *zap.Logger
	config    *destiin.Config
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "destiin"
	}
	return filepath.Join(dir, "destiin")
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "destiin",
		Short:         "Destiin travel and expense service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := destiin.LoadConfig(c.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			c.config = cfg

			zapConfig := zap.NewProductionConfig()
			if c.verbose || cfg.Debug {
				zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			c.logger, err = zapConfig.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.configDir, "config-dir", defaultConfigDir(), "directory holding config.yaml, the database and uploaded files")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(c),
		newSetupWorkflowCmd(c),
		newErrorLogsCmd(c),
		newAPIKeyCmd(c),
	)
	return root
}

// openApp opens the database and builds the App. The returned function closes the database.
func (c *cli) openApp() (*destiin.App, func(), error) {
	dbConn, err := db.New(c.config.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	repo := db.NewRepo(dbConn)

	app, err := destiin.New(
		destiin.WithLogger(c.logger),
		destiin.WithConfig(c.config),
		destiin.WithRepo(repo),
	)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	return app, func() { repo.Close() }, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
