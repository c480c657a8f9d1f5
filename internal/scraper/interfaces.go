package scraper

import (
	"context"
	"time"
)

// Archive persists records and answers the uniqueness queries the pipeline
// depends on. The postgres implementation is authoritative; the memory
// implementation backs tests and local development.
type Archive interface {
	// GetOrCreateFingerprint looks up the fingerprint row for a listing
	// URL, creating one with an empty hash on first visit.
	GetOrCreateFingerprint(ctx context.Context, url string) (fp SiteFingerprint, created bool, err error)

	// UpdateFingerprint advances the last-seen hash for a listing URL.
	// Called only after a clean run.
	UpdateFingerprint(ctx context.Context, url, hash string) error

	// DocumentExists reports whether a document with the content hash is
	// already archived.
	DocumentExists(ctx context.Context, sha1 string) (bool, error)

	// AudioExists reports whether an audio record with the content hash is
	// already archived.
	AudioExists(ctx context.Context, sha1 string) (bool, error)

	// DocumentByHash fetches the document with the content hash, or
	// ErrNotFound.
	DocumentByHash(ctx context.Context, sha1 string) (Document, error)

	// SaveOpinion persists the citation (when present) and then the
	// document referencing it, atomically. A nil citation means the
	// adapter provided no citation data; nothing empty is written for it.
	// Returns the document with IDs assigned.
	SaveOpinion(ctx context.Context, cite *Citation, doc Document) (Document, error)

	// SaveAudio persists the docket and then the audio record referencing
	// it, atomically. Returns the audio record with IDs assigned.
	SaveAudio(ctx context.Context, docket Docket, audio Audio) (Audio, error)

	// SaveCitation attaches a citation to an existing document. A race on
	// the uniqueness constraint surfaces as ErrDuplicateCitation.
	SaveCitation(ctx context.Context, cite Citation) (Citation, error)

	// CitationExists runs the two duplicate checks for a candidate
	// citation: an exact match on the comparison key, and any citation in
	// the same reporter for the same document.
	CitationExists(ctx context.Context, cite Citation) (exact bool, sameReporter bool, err error)

	// MarkForIndexing records that a freshly committed record still needs
	// a search-index update. Index maintenance itself is external.
	MarkForIndexing(ctx context.Context, itemType, recordID string) error

	// RecordError appends a per-court error log row for operator review.
	RecordError(ctx context.Context, courtID, level, message string) error
}

// BlobStore writes the original downloaded file and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// TaskQueue hands committed records to the asynchronous processing
// workers. Fire-and-forget: the pipeline never observes task results.
type TaskQueue interface {
	Enqueue(ctx context.Context, task, recordID string, delay time.Duration) error
}

// Fetcher downloads one document or audio payload. One bounded attempt,
// no retries; retry policy belongs to the next crawl cycle.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Hasher computes content fingerprints.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (swappable for tests).
type Clock interface {
	Now() time.Time
}

// Site is one court source: an adapter that parses the court's listing
// into date-descending candidate rows. Implementations live in
// internal/adapters and are selected through the registry.
type Site interface {
	// CourtID is the full adapter id, e.g.
	// "opinions.united_states.federal.ca1".
	CourtID() string

	// Parse fetches and parses the court's listing page.
	Parse(ctx context.Context) (*Listing, error)
}

// Committer persists one non-duplicate item and queues its downstream
// processing. Implementations exist for the opinion and audio pipelines.
type Committer interface {
	// Commit returns the new record's identifier. A failure means the item
	// was skipped and nothing was persisted for it.
	Commit(ctx context.Context, item CandidateItem, content []byte, sha1Hash, courtID string) (string, error)
}

// ExistsFunc answers the per-item duplicate query for one record kind.
type ExistsFunc func(ctx context.Context, sha1 string) (bool, error)
