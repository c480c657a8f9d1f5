package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// sitesTotal tracks per-site crawl outcomes.
	sitesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scraper_sites_total",
		Help: "Site crawls, labeled by outcome (changed, unchanged, failed).",
	}, []string{"outcome"})

	// itemsTotal tracks the disposition of each candidate item.
	itemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scraper_items_total",
		Help: "Candidate items processed, labeled by disposition.",
	}, []string{"disposition"})

	// abortsTotal tracks why per-site scans ended early.
	abortsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scraper_duplicate_aborts_total",
		Help: "Early aborts of per-site scans, labeled by trigger.",
	}, []string{"trigger"})

	// fingerprintUpdatesTotal counts advanced site fingerprints. A crawl
	// with errors withholds the update so the gap is visible here.
	fingerprintUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_fingerprint_updates_total",
		Help: "Site fingerprints advanced after clean runs.",
	})
)

// Item disposition labels.
const (
	dispositionNew          = "new"
	dispositionDuplicate    = "duplicate"
	dispositionFetchError   = "fetch_error"
	dispositionCommitError  = "commit_error"
	dispositionSkippedNoCit = "skipped_no_citation"
)
