// Package scraper implements the recurring scrape-and-ingest pipeline:
// site-change detection, duplicate detection, content download, and the
// commit protocol that turns adapter rows into archived records.
package scraper

import (
	"strings"
	"time"
)

// CandidateItem is one row produced by a site adapter. It lives only for
// the duration of a single site crawl; persisted records are built from it.
type CandidateItem struct {
	CaseName           string
	CaseNameShort      string
	DocketNumber       string
	Citations          []string
	ParallelCitations  []string
	Date               time.Time // date filed (opinions) or argued (audio)
	PrecedentialStatus string
	DownloadURL        string
	Blocked            bool
	Judges             string

	// Content carries pre-fetched bytes when the caller already downloaded
	// the file (the citation backfill path). Nil means "fetch it".
	Content []byte
}

// Listing is the parsed output of a site adapter for one court: the
// listing URL, the adapter's hash over the whole listing, and the rows in
// descending date order. The early-abort logic depends on that ordering.
type Listing struct {
	URL   string
	Hash  string
	Items []CandidateItem
}

// SiteFingerprint is the persisted last-seen hash for one listing URL.
// The hash is empty until the first clean crawl of that site completes.
type SiteFingerprint struct {
	URL  string
	SHA1 string
}

// CitationType distinguishes where a citation string came from.
type CitationType string

// Citation types mirrored from the adapter row fields.
const (
	CitationTypePrimary  CitationType = "primary"
	CitationTypeParallel CitationType = "parallel"
)

// Citation is a persisted citation for a document. Equality for duplicate
// purposes is the explicit (Volume, Reporter, Page, Type) key, never a
// reflective field comparison.
type Citation struct {
	ID         string
	DocumentID string
	Volume     int
	Reporter   string
	Page       string
	Type       CitationType
}

// Key returns the duplicate-comparison key.
func (c Citation) Key() CitationKey {
	return CitationKey{Volume: c.Volume, Reporter: c.Reporter, Page: c.Page, Type: c.Type}
}

// CitationKey is the enumerated comparison key for exact-duplicate checks.
type CitationKey struct {
	Volume   int
	Reporter string
	Page     string
	Type     CitationType
}

// Document is a persisted opinion. SHA1 is unique across all documents;
// it is the deduplication key.
type Document struct {
	ID                 string
	SHA1               string
	CourtID            string
	CaseName           string
	DateFiled          time.Time
	DownloadURL        string
	Source             string
	PrecedentialStatus string
	BlobURI            string
	CitationID         string
}

// Docket is the case-level container created for each new audio ingestion.
type Docket struct {
	ID            string
	CourtID       string
	CaseName      string
	CaseNameShort string
	DocketNumber  string
	DateArgued    time.Time
	Blocked       bool
	DateBlocked   *time.Time
}

// Audio is a persisted oral-argument recording. SHA1 is unique across all
// audio records.
type Audio struct {
	ID            string
	DocketID      string
	SHA1          string
	CaseName      string
	CaseNameShort string
	Judges        string
	DateArgued    time.Time
	DownloadURL   string
	Source        string
	BlobURI       string
	Blocked       bool
	DateBlocked   *time.Time
}

// SourceScraper marks records created by this pipeline, as opposed to
// bulk imports or manual uploads.
const SourceScraper = "C"

// CourtKey derives the archive court key from an adapter court id, e.g.
// "opinions.united_states.federal.ca9_u" -> "ca9".
func CourtKey(adapterCourtID string) string {
	parts := strings.Split(adapterCourtID, ".")
	last := parts[len(parts)-1]
	if i := strings.Index(last, "_"); i >= 0 {
		last = last[:i]
	}
	return last
}
