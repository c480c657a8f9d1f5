package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tactipus/courtlistener/internal/adapters"
	"github.com/tactipus/courtlistener/internal/hash/sha1"
	"github.com/tactipus/courtlistener/internal/scraper"
)

// newBackfillCitationsCmd creates the 'backfill-citations' subcommand.
//
// Courts often publish citations months after the opinions themselves.
// This command re-crawls a court's listing, matches rows to archived
// documents by content hash, and attaches the citations we were missing.
// Rows with no hash match are ingested like a regular scrape.
func newBackfillCitationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill-citations",
		Short: "Attach lagged citations to already-archived opinions",
		RunE:  runBackfillCitationsCommand,
	}
	cmd.Flags().StringP("courts", "c", "", "court to backfill: a full adapter id or a package such as \"opinions\"")
	_ = cmd.MarkFlagRequired("courts")
	return cmd
}

func runBackfillCitationsCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	if courts, _ := cmd.Flags().GetString("courts"); courts != "" {
		viper.Set("scraper.courts", courts)
	}

	cfg, err := scraper.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load scraper config: %w", err)
	}
	sites, err := adapters.Resolve(cfg.Courts)
	if err != nil {
		return err
	}

	archive := appInstance.GetArchive()
	fetcher := scraper.NewHTTPFetcher(cfg.RequestTimeout, cfg.UserAgent)
	hasher := sha1.New()
	backfiller := scraper.NewCitationBackfiller(
		archive,
		fetcher,
		hasher,
		scraper.NewOpinionCommitter(
			archive,
			appInstance.GetBlobStore(),
			appInstance.GetQueue(),
			appInstance.GetLogger(),
		),
		appInstance.GetLogger(),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, site := range sites {
		if ctx.Err() != nil {
			return scraper.ErrStopped
		}
		if err := backfiller.BackfillSite(ctx, site); err != nil {
			appInstance.GetLogger().Error("Citation backfill failed for site",
				zap.String("court", site.CourtID()),
				zap.Error(err),
			)
		}
	}
	return nil
}
