package scraper

import (
	"context"
	"fmt"
	"time"
)

// Decision is the per-item verdict of the duplicate checker.
type Decision int

// Decisions, evaluated strictly in this order for each item.
const (
	// DecisionNew means the item is not in the archive and must be
	// committed.
	DecisionNew Decision = iota

	// DecisionContinue means the item is a duplicate but scanning should
	// keep going: some courts list duplicates ahead of older rows we are
	// still missing.
	DecisionContinue

	// DecisionAbort means the archive is judged caught up and the rest of
	// the stream can be abandoned.
	DecisionAbort
)

func (d Decision) String() string {
	switch d {
	case DecisionNew:
		return "new"
	case DecisionContinue:
		return "duplicate-continue"
	case DecisionAbort:
		return "duplicate-abort"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// maxConsecutiveDups is the heuristic cutoff: five duplicates in a row is
// strong evidence of being caught up even without a date inversion. Do
// not tune this; ingestion completeness guarantees depend on it.
const maxConsecutiveDups = 5

// DupChecker decides, for a date-descending stream of items, whether each
// item is new and when the stream can be abandoned early.
//
// It tracks an unbroken duplicate run: the date of the run's FIRST
// duplicate (not of the current item) is the reference for the
// date-inversion abort. The run and its counter reset only when a new
// item is processed, never on a continue.
type DupChecker struct {
	exists    ExistsFunc
	fullCrawl bool

	dupCount     int
	dupFoundDate time.Time
}

// NewDupChecker builds a checker over the given existence query. In
// full-crawl mode (citation backfill) duplicates never abort the stream.
func NewDupChecker(exists ExistsFunc, fullCrawl bool) *DupChecker {
	return &DupChecker{exists: exists, fullCrawl: fullCrawl}
}

// Check evaluates one item. current is the item's date; next is the date
// of the following item, or nil at the end of the stream. The one-item
// lookahead is the only buffering the pipeline is allowed.
func (d *DupChecker) Check(ctx context.Context, sha1Hash string, current time.Time, next *time.Time) (Decision, error) {
	found, err := d.exists(ctx, sha1Hash)
	if err != nil {
		return DecisionContinue, fmt.Errorf("duplicate lookup: %w", err)
	}
	if !found {
		d.reset()
		return DecisionNew, nil
	}

	if d.dupCount == 0 {
		d.dupFoundDate = current
	}
	d.dupCount++

	if d.fullCrawl {
		return DecisionContinue, nil
	}

	switch {
	case next != nil && next.Before(d.dupFoundDate):
		// Everything earlier is guaranteed already ingested because the
		// stream is date-descending.
		return DecisionAbort, nil
	case next == nil:
		return DecisionAbort, nil
	case d.dupCount >= maxConsecutiveDups:
		return DecisionAbort, nil
	default:
		return DecisionContinue, nil
	}
}

// reset clears the duplicate run. Internal: runs end only on a new item.
func (d *DupChecker) reset() {
	d.dupCount = 0
	d.dupFoundDate = time.Time{}
}
