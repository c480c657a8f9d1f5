package adapters

import (
	"context"

	"github.com/tactipus/courtlistener/internal/scraper"
)

// StaticSite serves a pre-built listing. Used by tests and by courts
// whose rows arrive out of band (bulk drops, mailed listings).
type StaticSite struct {
	id      string
	listing scraper.Listing
}

// NewStaticSite builds a static site for the given adapter id.
func NewStaticSite(id string, listing scraper.Listing) *StaticSite {
	return &StaticSite{id: id, listing: listing}
}

// CourtID returns the adapter id.
func (s *StaticSite) CourtID() string { return s.id }

// Parse returns a copy of the listing so callers cannot mutate the
// source rows.
func (s *StaticSite) Parse(_ context.Context) (*scraper.Listing, error) {
	out := s.listing
	out.Items = append([]scraper.CandidateItem(nil), s.listing.Items...)
	return &out, nil
}
