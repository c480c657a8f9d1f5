package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tactipus/courtlistener/internal/scraper"
)

// The registry is a process-wide singleton, so test ids live under a
// namespace no real court uses.
func registerStatic(id string) {
	Register(id, func() (scraper.Site, error) {
		return NewStaticSite(id, scraper.Listing{URL: "https://example.com/" + id}), nil
	})
}

func init() {
	registerStatic("registrytest.opinions.alpha")
	registerStatic("registrytest.opinions.beta")
	registerStatic("registrytest.oral_arguments.alpha")
}

func TestResolveExactID(t *testing.T) {
	t.Parallel()

	sites, err := Resolve("registrytest.opinions.alpha")
	require.NoError(t, err)
	require.Len(t, sites, 1)
	require.Equal(t, "registrytest.opinions.alpha", sites[0].CourtID())
}

func TestResolvePrefixSelectsGroupInStableOrder(t *testing.T) {
	t.Parallel()

	sites, err := Resolve("registrytest.opinions")
	require.NoError(t, err)
	require.Len(t, sites, 2)
	require.Equal(t, "registrytest.opinions.alpha", sites[0].CourtID())
	require.Equal(t, "registrytest.opinions.beta", sites[1].CourtID())
}

func TestResolveUnknownSelector(t *testing.T) {
	t.Parallel()

	_, err := Resolve("registrytest.nonexistent")
	require.Error(t, err)

	// A prefix must match on a segment boundary: "registrytest.opinions.al"
	// is not a package.
	_, err = Resolve("registrytest.opinions.al")
	require.Error(t, err)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		registerStatic("registrytest.opinions.alpha")
	})
}

func TestIDsIncludeRegisteredAdapters(t *testing.T) {
	t.Parallel()

	ids := IDs()
	require.Contains(t, ids, "registrytest.opinions.alpha")
	require.Contains(t, ids, "registrytest.oral_arguments.alpha")
	require.IsIncreasing(t, ids)
}

func TestStaticSiteParseReturnsACopy(t *testing.T) {
	t.Parallel()

	site := NewStaticSite("registrytest.static", scraper.Listing{
		URL:  "https://example.com/static",
		Hash: "h1",
		Items: []scraper.CandidateItem{
			{CaseName: "original"},
		},
	})

	listing, err := site.Parse(context.Background())
	require.NoError(t, err)
	listing.Items[0].CaseName = "mutated"

	again, err := site.Parse(context.Background())
	require.NoError(t, err)
	require.Equal(t, "original", again.Items[0].CaseName)
}
