package scraper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Orchestrator drives one pipeline (opinions or audio) across a set of
// court sites: change gate, per-item duplicate decisions, commits, and
// the fingerprint update at the end of a clean run.
//
// Processing is strictly sequential: one site at a time, one item at a
// time, with only a one-item date lookahead. The adapters' descending
// date order is a contract the orchestrator must not disturb.
type Orchestrator struct {
	archive   Archive
	fetcher   Fetcher
	hasher    Hasher
	exists    ExistsFunc
	committer Committer
	logger    *zap.Logger

	// fullCrawl disables the early-abort heuristics and the fingerprint
	// update; used by backscrapes.
	fullCrawl bool
}

// NewOrchestrator wires an orchestrator for one pipeline.
func NewOrchestrator(
	archive Archive,
	fetcher Fetcher,
	hasher Hasher,
	exists ExistsFunc,
	committer Committer,
	fullCrawl bool,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		archive:   archive,
		fetcher:   fetcher,
		hasher:    hasher,
		exists:    exists,
		committer: committer,
		fullCrawl: fullCrawl,
		logger:    logger,
	}
}

// Run processes the sites sequentially, pacing so one pass through all of
// them takes roughly cycleBudget. In daemon mode it wraps back to the
// first site after the last, forever.
//
// Cancellation is cooperative and polled only at site boundaries, so the
// worst-case shutdown latency is the in-flight site. A cancellation
// observed mid-loop returns ErrStopped.
func (o *Orchestrator) Run(ctx context.Context, sites []Site, cycleBudget time.Duration, daemon bool) error {
	if len(sites) == 0 {
		return fmt.Errorf("no sites to scrape")
	}

	wait := cycleBudget / time.Duration(len(sites))
	pacer := rate.NewLimiter(rate.Every(wait), 1)

	for i := 0; ; {
		if ctx.Err() != nil {
			o.logger.Info("The scraper has stopped.")
			return ErrStopped
		}

		site := sites[i]
		if err := o.ScrapeSite(ctx, site); err != nil {
			// A broken site never takes down the loop; it is skipped for
			// this cycle and retried on the next.
			sitesTotal.WithLabelValues("failed").Inc()
			o.logger.Error("CRAWLER DOWN: site scrape failed",
				zap.String("court", site.CourtID()),
				zap.Error(err),
			)
		}

		if err := pacer.Wait(ctx); err != nil {
			o.logger.Info("The scraper has stopped.")
			return ErrStopped
		}

		if i == len(sites)-1 {
			if !daemon {
				return nil
			}
			i = 0
		} else {
			i++
		}
	}
}

// ScrapeSite runs one site end to end. The returned error covers parse
// and infrastructure failures only; per-item fetch/commit failures are
// logged, skipped, and expressed solely by withholding the fingerprint
// update so the missed items are retried next cycle.
func (o *Orchestrator) ScrapeSite(ctx context.Context, site Site) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("site %s panicked: %v", site.CourtID(), r)
		}
	}()

	listing, err := site.Parse(ctx)
	if err != nil {
		return fmt.Errorf("parse site %s: %w", site.CourtID(), err)
	}
	courtID := CourtKey(site.CourtID())
	log := o.logger.With(zap.String("court", courtID), zap.String("url", listing.URL))

	changed, _, err := NewSiteChangeDetector(o.archive).Changed(ctx, listing.URL, listing.Hash)
	if err != nil {
		// Datastore unreachable: fatal infrastructure error.
		return err
	}
	if !changed {
		sitesTotal.WithLabelValues("unchanged").Inc()
		log.Info("Unchanged hash; court is already up to date")
		return nil
	}
	sitesTotal.WithLabelValues("changed").Inc()
	log.Info("Identified changed hash; scanning items")

	dupChecker := NewDupChecker(o.exists, o.fullCrawl)
	runErrored := false

	for i, item := range listing.Items {
		content, sha1Hash, ok := o.materialize(ctx, item, log)
		if !ok {
			// Download failures skip the item without touching the
			// duplicate-abort accounting.
			runErrored = true
			continue
		}

		var next *time.Time
		if i+1 < len(listing.Items) {
			next = &listing.Items[i+1].Date
		}

		decision, err := dupChecker.Check(ctx, sha1Hash, item.Date, next)
		if err != nil {
			return err
		}

		switch decision {
		case DecisionNew:
			log.Info("Adding new record", zap.String("download_url", item.DownloadURL))
			if _, err := o.committer.Commit(ctx, item, content, sha1Hash, courtID); err != nil {
				itemsTotal.WithLabelValues(dispositionCommitError).Inc()
				runErrored = true
				continue
			}
			itemsTotal.WithLabelValues(dispositionNew).Inc()
			log.Info("Successfully added", zap.String("case_name", item.CaseName))

		case DecisionContinue:
			itemsTotal.WithLabelValues(dispositionDuplicate).Inc()
			log.Info("Duplicate found; continuing scan",
				zap.String("download_url", item.DownloadURL),
			)

		case DecisionAbort:
			itemsTotal.WithLabelValues(dispositionDuplicate).Inc()
			abortsTotal.WithLabelValues(abortTrigger(next, dupChecker)).Inc()
			log.Info("Court is up to date; aborting scan",
				zap.Int("items_scanned", i+1),
			)
			return o.finishRun(ctx, listing, runErrored, log)
		}
	}

	return o.finishRun(ctx, listing, runErrored, log)
}

// finishRun advances the site fingerprint, but only for clean runs of a
// regular crawl. Any fetch or storage error keeps the old hash so the
// site is revisited in full next cycle.
func (o *Orchestrator) finishRun(ctx context.Context, listing *Listing, runErrored bool, log *zap.Logger) error {
	log.Info("Successfully crawled")
	if runErrored || o.fullCrawl {
		log.Warn("Fingerprint not advanced", zap.Bool("run_errored", runErrored))
		return nil
	}
	if err := o.archive.UpdateFingerprint(ctx, listing.URL, listing.Hash); err != nil {
		return fmt.Errorf("update fingerprint for %s: %w", listing.URL, err)
	}
	fingerprintUpdatesTotal.Inc()
	return nil
}

// materialize returns the item's bytes and fingerprint, fetching unless
// the adapter already attached content. ok is false on download failure.
func (o *Orchestrator) materialize(ctx context.Context, item CandidateItem, log *zap.Logger) ([]byte, string, bool) {
	content := item.Content
	if content == nil {
		var err error
		content, err = o.fetcher.Fetch(ctx, item.DownloadURL)
		if err != nil {
			itemsTotal.WithLabelValues(dispositionFetchError).Inc()
			log.Warn("Download failed; skipping item",
				zap.String("download_url", item.DownloadURL),
				zap.Error(err),
			)
			return nil, "", false
		}
	}
	sha1Hash, err := o.hasher.Hash(content)
	if err != nil {
		log.Warn("Hashing failed; skipping item", zap.Error(err))
		return nil, "", false
	}
	return content, sha1Hash, true
}

func abortTrigger(next *time.Time, d *DupChecker) string {
	switch {
	case next == nil:
		return "end_of_stream"
	case next.Before(d.dupFoundDate):
		return "date_inversion"
	default:
		return "consecutive_count"
	}
}
