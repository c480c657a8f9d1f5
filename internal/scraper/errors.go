package scraper

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the pipeline.
var (
	// ErrEmptyBody means the download returned a zero-length response.
	// Some courts serve empty files for rows that are not ready yet.
	ErrEmptyBody = errors.New("empty response body")

	// ErrNotFound is returned by archive lookups that matched nothing.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateCitation is returned when a citation save loses a race
	// on the uniqueness constraint. Recovered by logging, never fatal.
	ErrDuplicateCitation = errors.New("duplicate citation")

	// ErrStopped is returned by the multi-site loop when the cancellation
	// signal fired at a site boundary. Maps to exit code 1.
	ErrStopped = errors.New("scraper stopped by signal")
)

// FetchError classifies a failed download: connection errors, timeouts,
// and non-2xx statuses all land here. Non-fatal per item.
type FetchError struct {
	URL        string
	StatusCode int // zero when the request never got a response
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StorageError classifies a failed blob write. The item's rows must not
// exist when its binary could not be stored.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsDownloadFailure reports whether err is a per-item fetch failure
// (empty body or network/status error) rather than something structural.
func IsDownloadFailure(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) || errors.Is(err, ErrEmptyBody)
}
