package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tactipus/courtlistener/internal/adapters"
	"github.com/tactipus/courtlistener/internal/clock/system"
	"github.com/tactipus/courtlistener/internal/hash/sha1"
	"github.com/tactipus/courtlistener/internal/scraper"
)

// newScrapeAudioCmd creates the 'scrape-audio' subcommand for the
// oral-argument pipeline.
func newScrapeAudioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape-audio",
		Short: "Scrape and ingest oral-argument recordings",
		Long: `Crawls the selected court sites for new oral-argument recordings,
creates a docket for each new recording, stores the audio, and queues
audio processing with a randomized delay to spread worker load.`,
		RunE: runScrapeAudioCommand,
	}
	addCourtFlags(cmd)
	return cmd
}

func runScrapeAudioCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	applyCourtFlags(cmd)

	cfg, err := scraper.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load scraper config: %w", err)
	}
	sites, err := adapters.Resolve(cfg.Courts)
	if err != nil {
		return err
	}

	archive := appInstance.GetArchive()
	orch := scraper.NewOrchestrator(
		archive,
		scraper.NewHTTPFetcher(cfg.RequestTimeout, cfg.UserAgent),
		sha1.New(),
		archive.AudioExists,
		scraper.NewAudioCommitter(
			archive,
			appInstance.GetBlobStore(),
			appInstance.GetQueue(),
			system.New(),
			appInstance.GetLogger(),
		),
		false,
		appInstance.GetLogger(),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return orch.Run(ctx, sites, cfg.Rate, cfg.Daemon)
}
