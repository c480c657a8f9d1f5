package scraper

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// CitationBackfiller re-runs a court's scraper to pick up citations that
// were published months after the opinions themselves. Rows whose content
// hash matches an archived document get the missing citation attached;
// rows we have never seen are ingested through the regular opinion path.
//
// Backfills run in full-crawl mode: duplicates never abort the scan and
// the site fingerprint is never advanced.
type CitationBackfiller struct {
	archive   Archive
	fetcher   Fetcher
	hasher    Hasher
	committer Committer
	logger    *zap.Logger
}

// NewCitationBackfiller wires a backfiller around the opinion committer.
func NewCitationBackfiller(archive Archive, fetcher Fetcher, hasher Hasher, committer Committer, logger *zap.Logger) *CitationBackfiller {
	return &CitationBackfiller{
		archive:   archive,
		fetcher:   fetcher,
		hasher:    hasher,
		committer: committer,
		logger:    logger,
	}
}

// BackfillSite processes one court's listing.
func (b *CitationBackfiller) BackfillSite(ctx context.Context, site Site) error {
	listing, err := site.Parse(ctx)
	if err != nil {
		return fmt.Errorf("parse site %s: %w", site.CourtID(), err)
	}
	courtID := CourtKey(site.CourtID())
	log := b.logger.With(zap.String("court", courtID))

	for _, item := range listing.Items {
		if len(item.Citations) == 0 && len(item.ParallelCitations) == 0 {
			itemsTotal.WithLabelValues(dispositionSkippedNoCit).Inc()
			log.Debug("No citation; skipping row", zap.String("case_name", item.CaseName))
			continue
		}

		content, err := b.fetcher.Fetch(ctx, item.DownloadURL)
		if err != nil {
			log.Warn("Download failed; skipping row",
				zap.String("download_url", item.DownloadURL),
				zap.Error(err),
			)
			continue
		}
		sha1Hash, err := b.hasher.Hash(content)
		if err != nil {
			log.Warn("Hashing failed; skipping row", zap.Error(err))
			continue
		}

		doc, err := b.archive.DocumentByHash(ctx, sha1Hash)
		switch {
		case errors.Is(err, ErrNotFound):
			// An opinion we never ingested, now carrying a citation:
			// run it through the regular commit path. Content rides along
			// so it is not downloaded twice.
			log.Info("No matching hash in the archive; ingesting the full record",
				zap.String("case_name", item.CaseName),
			)
			item.Content = content
			if _, err := b.committer.Commit(ctx, item, content, sha1Hash, courtID); err != nil {
				log.Error("Backfill ingest failed",
					zap.String("case_name", item.CaseName),
					zap.Error(err),
				)
			}
			continue
		case err != nil:
			return fmt.Errorf("document lookup by hash: %w", err)
		}

		b.attachCitations(ctx, item, doc, log)
	}
	return nil
}

// attachCitations saves each parseable, non-duplicated citation against
// the existing document.
func (b *CitationBackfiller) attachCitations(ctx context.Context, item CandidateItem, doc Document, log *zap.Logger) {
	candidates := make([]Citation, 0, len(item.Citations)+len(item.ParallelCitations))
	for _, raw := range item.Citations {
		if cite, ok := ParseCitation(raw, CitationTypePrimary); ok {
			candidates = append(candidates, cite)
		}
	}
	for _, raw := range item.ParallelCitations {
		if cite, ok := ParseCitation(raw, CitationTypeParallel); ok {
			candidates = append(candidates, cite)
		}
	}

	for _, cite := range candidates {
		cite.DocumentID = doc.ID

		exact, sameReporter, err := b.archive.CitationExists(ctx, cite)
		if err != nil {
			log.Error("Citation duplicate check failed", zap.Error(err))
			continue
		}
		if exact {
			log.Info("Citation already exists for document",
				zap.String("document_id", doc.ID),
				zap.String("reporter", cite.Reporter),
			)
			continue
		}
		if sameReporter {
			log.Info("Another citation in the same reporter exists for document",
				zap.String("document_id", doc.ID),
				zap.String("reporter", cite.Reporter),
			)
			continue
		}

		if _, err := b.archive.SaveCitation(ctx, cite); err != nil {
			if errors.Is(err, ErrDuplicateCitation) {
				// Lost a race on the uniqueness constraint; the citation
				// is there, which is all we wanted.
				log.Warn("Citation save hit uniqueness constraint",
					zap.String("document_id", doc.ID),
					zap.String("reporter", cite.Reporter),
				)
				continue
			}
			log.Error("Citation save failed", zap.Error(err))
			continue
		}
		log.Info("Saved citation for document",
			zap.String("document_id", doc.ID),
			zap.String("reporter", cite.Reporter),
		)
	}
}
