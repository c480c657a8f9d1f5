package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tactipus/courtlistener/internal/adapters"
	"github.com/tactipus/courtlistener/internal/hash/sha1"
	"github.com/tactipus/courtlistener/internal/scraper"
)

// addCourtFlags defines the flags shared by the scrape commands.
func addCourtFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("courts", "c", "", "court to scrape: a full adapter id or a package such as \"opinions\"")
	cmd.Flags().BoolP("daemon", "d", false, "daemon mode: cycle through the requested courts non-stop")
	cmd.Flags().IntP("rate", "r", 0, "minutes to crawl all requested courts once (default 30)")
	_ = cmd.MarkFlagRequired("courts")
}

// applyCourtFlags pushes flag values into Viper so LoadConfig sees them
// alongside file and environment settings.
func applyCourtFlags(cmd *cobra.Command) {
	if courts, _ := cmd.Flags().GetString("courts"); courts != "" {
		viper.Set("scraper.courts", courts)
	}
	if cmd.Flags().Changed("daemon") {
		daemon, _ := cmd.Flags().GetBool("daemon")
		viper.Set("scraper.daemon", daemon)
	}
	if cmd.Flags().Changed("rate") {
		rate, _ := cmd.Flags().GetInt("rate")
		viper.Set("scraper.rate_minutes", rate)
	}
}

// newScrapeCmd creates the 'scrape' subcommand for the opinion pipeline.
func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape and ingest court opinions",
		Long: `Crawls the selected court sites for new opinions, deduplicates them
against the archive by content hash, stores the originals, and queues
text extraction for each new document.`,
		RunE: runScrapeCommand,
	}
	addCourtFlags(cmd)
	return cmd
}

func runScrapeCommand(cmd *cobra.Command, _ []string) error {
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
		archive.DocumentExists,
		scraper.NewOpinionCommitter(
			archive,
			appInstance.GetBlobStore(),
			appInstance.GetQueue(),
			appInstance.GetLogger(),
		),
		false,
		appInstance.GetLogger(),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return orch.Run(ctx, sites, cfg.Rate, cfg.Daemon)
}
