package scraper

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// The counters are process-global, so the assertions here are deltas.

func TestScrapeSiteRecordsMetrics(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(false)
	p.archive.seedDocument("middle")
	site := &fakeSite{
		id: "opinions.united_states.federal.ca1",
		listing: listingOf("https://court.example/metrics", "h1",
			inlineItem("top", day(3)),
			inlineItem("middle", day(2)),
			inlineItem("bottom", day(1)),
		),
	}

	changedBefore := testutil.ToFloat64(sitesTotal.WithLabelValues("changed"))
	newBefore := testutil.ToFloat64(itemsTotal.WithLabelValues(dispositionNew))
	dupBefore := testutil.ToFloat64(itemsTotal.WithLabelValues(dispositionDuplicate))
	inversionBefore := testutil.ToFloat64(abortsTotal.WithLabelValues("date_inversion"))
	fpBefore := testutil.ToFloat64(fingerprintUpdatesTotal)

	require.NoError(t, p.orch.ScrapeSite(ctx, site))

	require.Equal(t, changedBefore+1, testutil.ToFloat64(sitesTotal.WithLabelValues("changed")))
	require.Equal(t, newBefore+1, testutil.ToFloat64(itemsTotal.WithLabelValues(dispositionNew)))
	require.Equal(t, dupBefore+1, testutil.ToFloat64(itemsTotal.WithLabelValues(dispositionDuplicate)))
	require.Equal(t, inversionBefore+1, testutil.ToFloat64(abortsTotal.WithLabelValues("date_inversion")))
	require.Equal(t, fpBefore+1, testutil.ToFloat64(fingerprintUpdatesTotal))
}

func TestUnchangedSiteRecordsMetric(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(false)
	url := "https://court.example/metrics-unchanged"
	_, _, err := p.archive.GetOrCreateFingerprint(ctx, url)
	require.NoError(t, err)
	require.NoError(t, p.archive.UpdateFingerprint(ctx, url, "h1"))

	site := &fakeSite{
		id:      "opinions.united_states.federal.ca1",
		listing: listingOf(url, "h1"),
	}

	before := testutil.ToFloat64(sitesTotal.WithLabelValues("unchanged"))
	require.NoError(t, p.orch.ScrapeSite(ctx, site))
	require.Equal(t, before+1, testutil.ToFloat64(sitesTotal.WithLabelValues("unchanged")))
}
