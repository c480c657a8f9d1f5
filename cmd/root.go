// Package cmd defines and implements the CLI commands for the
// courtlistener scraper executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	// Side-effect import: populates the court adapter registry.
	_ "github.com/tactipus/courtlistener/internal/adapters/courts"
	"github.com/tactipus/courtlistener/internal/app"
	"github.com/tactipus/courtlistener/internal/logging"
	"github.com/tactipus/courtlistener/internal/scraper"
	"github.com/tactipus/courtlistener/pkg/config"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands use. Tests inject
// a mock app through the newApp factory.
type App interface {
	Close()
	GetLogger() *zap.Logger
	GetArchive() scraper.Archive
	GetBlobStore() scraper.BlobStore
	GetQueue() scraper.TaskQueue
}

// newApp is the application factory. A variable so tests can replace it.
var newApp = func(ctx context.Context) (App, error) {
	return app.NewApp(ctx)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courtlistener",
		Short: "Recurring scraper for court opinions and oral arguments.",
		Long: `courtlistener crawls configured court websites on a schedule,
detects which sites changed since the last visit, downloads new opinions
and oral-argument recordings, deduplicates them against the archive by
content hash, and queues downstream text extraction and audio processing.`,

		// Runs after config is loaded but before the subcommand's RunE:
		// the place to build and inject the application services.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		// Ensures services shut down gracefully after the command ends.
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cobra.OnInitialize(config.InitConfig)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.courtlistener/config.yaml)")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newScrapeAudioCmd())
	cmd.AddCommand(newBackfillCitationsCmd())

	return cmd
}

// Execute is the main entry point. A run interrupted by a signal exits
// with code 1 so schedulers can tell an aborted cycle from a completed
// one.
func Execute() {
	logging.InitLogger()

	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, scraper.ErrStopped) {
			logging.L.Info("The scraper has stopped.")
			_ = logging.L.Sync()
			os.Exit(1)
		}
		logging.L.Fatal("Command execution failed", zap.Error(err))
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}
