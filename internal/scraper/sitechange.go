package scraper

import (
	"context"
	"fmt"
)

// SiteChangeDetector gates ingestion on a whole-site listing hash. A site
// whose listing hash matches its persisted fingerprint has nothing new.
type SiteChangeDetector struct {
	archive Archive
}

// NewSiteChangeDetector builds a detector over the archive.
func NewSiteChangeDetector(archive Archive) *SiteChangeDetector {
	return &SiteChangeDetector{archive: archive}
}

// Changed compares the adapter's current listing hash against the
// persisted fingerprint for url, creating the fingerprint row on first
// visit. It returns false only when a row already existed with the same
// hash. Creation with an empty hash does not count as "seen"; the caller
// writes the new hash back only after a clean run.
//
// Archive failures here are infrastructure errors and abort the whole
// run: there is no per-item recovery for an unreachable datastore.
func (d *SiteChangeDetector) Changed(ctx context.Context, url, newHash string) (bool, SiteFingerprint, error) {
	fp, created, err := d.archive.GetOrCreateFingerprint(ctx, url)
	if err != nil {
		return false, SiteFingerprint{}, fmt.Errorf("fingerprint lookup for %s: %w", url, err)
	}
	if !created && fp.SHA1 == newHash {
		return false, fp, nil
	}
	return true, fp, nil
}
