// Package courts registers the concrete court adapters. Importing it for
// side effects populates the registry the CLI resolves selectors from.
package courts

import (
	"time"

	"github.com/tactipus/courtlistener/internal/adapters"
	"github.com/tactipus/courtlistener/internal/adapters/listing"
	"github.com/tactipus/courtlistener/internal/scraper"
)

const userAgent = "courtlistener-scraper/1.0"

func register(cfg listing.Config) {
	adapters.Register(cfg.CourtID, func() (scraper.Site, error) {
		return listing.New(cfg)
	})
}

func init() {
	register(listing.Config{
		CourtID:        "opinions.united_states.federal.ca1",
		URL:            "https://www.ca1.uscourts.gov/opinions/main.php",
		RowSelector:    "table#opinions tbody tr",
		NameSelector:   "td.case-name",
		DateSelector:   "td.issue-date",
		LinkSelector:   "td.case-name a",
		DocketSelector: "td.docket-number",
		DateFormat:     "01/02/2006",
		UserAgent:      userAgent,
		RequestTimeout: 30 * time.Second,
	})

	register(listing.Config{
		CourtID:          "opinions.united_states.federal.ca9_p",
		URL:              "https://www.ca9.uscourts.gov/opinions/",
		RowSelector:      "table.opinions-table tbody tr",
		NameSelector:     "td.title",
		DateSelector:     "td.filed",
		LinkSelector:     "td.title a",
		DocketSelector:   "td.caseno",
		CitationSelector: "td.citation",
		DateFormat:       "01/02/2006",
		UserAgent:        userAgent,
		RequestTimeout:   30 * time.Second,
	})

	register(listing.Config{
		CourtID:        "oral_arguments.united_states.federal.ca1",
		URL:            "https://www.ca1.uscourts.gov/oral-arguments/recordings",
		RowSelector:    "table#recordings tbody tr",
		NameSelector:   "td.case-name",
		DateSelector:   "td.argued-date",
		LinkSelector:   "td.audio a",
		DocketSelector: "td.docket-number",
		DateFormat:     "01/02/2006",
		UserAgent:      userAgent,
		RequestTimeout: 30 * time.Second,
	})
}
