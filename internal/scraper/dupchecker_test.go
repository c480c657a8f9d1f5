package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// existsSet builds an ExistsFunc over a fixed set of known hashes.
func existsSet(known ...string) ExistsFunc {
	set := make(map[string]bool, len(known))
	for _, h := range known {
		set[h] = true
	}
	return func(_ context.Context, sha1 string) (bool, error) {
		return set[sha1], nil
	}
}

func ptr(t time.Time) *time.Time { return &t }

func TestDupCheckerNewItemResetsRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := NewDupChecker(existsSet("dup"), false)

	// Four duplicates, one short of the cutoff.
	for i := 0; i < 4; i++ {
		decision, err := d.Check(ctx, "dup", day(5), ptr(day(5)))
		require.NoError(t, err)
		require.Equal(t, DecisionContinue, decision)
	}

	decision, err := d.Check(ctx, "fresh", day(5), ptr(day(5)))
	require.NoError(t, err)
	require.Equal(t, DecisionNew, decision)

	// The run restarted: four more duplicates still do not abort.
	for i := 0; i < 4; i++ {
		decision, err := d.Check(ctx, "dup", day(5), ptr(day(5)))
		require.NoError(t, err)
		require.Equal(t, DecisionContinue, decision)
	}
	decision, err = d.Check(ctx, "dup", day(5), ptr(day(5)))
	require.NoError(t, err)
	require.Equal(t, DecisionAbort, decision)
}

func TestDupCheckerFiveConsecutiveDuplicatesAbort(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := NewDupChecker(existsSet("dup"), false)

	// Dates never invert and the stream never ends, so only the counter
	// can trigger the abort. It must fire on the fifth duplicate exactly.
	for i := 0; i < 4; i++ {
		decision, err := d.Check(ctx, "dup", day(9), ptr(day(9)))
		require.NoError(t, err)
		require.Equal(t, DecisionContinue, decision, "duplicate %d must not abort", i+1)
	}
	decision, err := d.Check(ctx, "dup", day(9), ptr(day(9)))
	require.NoError(t, err)
	require.Equal(t, DecisionAbort, decision)
}

func TestDupCheckerDescendingDuplicatesDoNotAbortEarly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := NewDupChecker(existsSet("dup"), false)

	// Duplicates marching down through strictly older dates are normal
	// descending order, not an inversion. Only the counter may stop them.
	decision, err := d.Check(ctx, "dup", day(3), ptr(day(3)))
	require.NoError(t, err)
	require.Equal(t, DecisionContinue, decision)

	decision, err = d.Check(ctx, "dup", day(3), ptr(day(3)))
	require.NoError(t, err)
	require.Equal(t, DecisionContinue, decision)
}

func TestDupCheckerInversionComparesAgainstFirstDuplicateOfRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := NewDupChecker(existsSet("dup-a", "dup-b"), false)

	// First duplicate of the run is on day 5.
	decision, err := d.Check(ctx, "dup-a", day(5), ptr(day(5)))
	require.NoError(t, err)
	require.Equal(t, DecisionContinue, decision)

	// The second duplicate sits on day 3; the lookahead at day 4 is
	// earlier than the run's FIRST duplicate (day 5), so the scan stops
	// even though day 4 is later than the current item.
	decision, err = d.Check(ctx, "dup-b", day(3), ptr(day(4)))
	require.NoError(t, err)
	require.Equal(t, DecisionAbort, decision)
}

func TestDupCheckerEndOfStreamDuplicateAborts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := NewDupChecker(existsSet("dup"), false)

	decision, err := d.Check(ctx, "dup", day(1), nil)
	require.NoError(t, err)
	require.Equal(t, DecisionAbort, decision)
}

func TestDupCheckerFullCrawlNeverAborts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := NewDupChecker(existsSet("dup"), true)

	for i := 0; i < 20; i++ {
		decision, err := d.Check(ctx, "dup", day(1), nil)
		require.NoError(t, err)
		require.Equal(t, DecisionContinue, decision)
	}
}

func TestDupCheckerLookupErrorPropagates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lookupErr := errors.New("connection refused")
	d := NewDupChecker(func(context.Context, string) (bool, error) {
		return false, lookupErr
	}, false)

	_, err := d.Check(ctx, "any", day(1), nil)
	require.ErrorIs(t, err, lookupErr)
}

func TestDecisionString(t *testing.T) {
	t.Parallel()
	require.Equal(t, "new", DecisionNew.String())
	require.Equal(t, "duplicate-continue", DecisionContinue.String())
	require.Equal(t, "duplicate-abort", DecisionAbort.String())
}
