// Package listing implements a selector-driven adapter for courts whose
// sites are plain HTML tables of cases. One Config per court captures
// the listing URL and the CSS selectors for each row field.
package listing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/tactipus/courtlistener/internal/hash/sha1"
	"github.com/tactipus/courtlistener/internal/scraper"
)

// Config describes one court's listing page.
type Config struct {
	// CourtID is the full adapter id this config is registered under.
	CourtID string

	// URL is the listing page to fetch.
	URL string

	// RowSelector matches one case row; the field selectors below are
	// evaluated relative to it.
	RowSelector string

	NameSelector     string
	DateSelector     string
	LinkSelector     string // anchor whose href is the download URL
	DocketSelector   string // optional
	CitationSelector string // optional
	StatusSelector   string // optional precedential status column

	// DateFormat is the Go reference layout for the date column.
	DateFormat string

	UserAgent      string
	RequestTimeout time.Duration
}

// Validate checks the required fields.
func (c Config) Validate() error {
	switch {
	case c.CourtID == "":
		return fmt.Errorf("listing: court id is required")
	case c.URL == "":
		return fmt.Errorf("listing: url is required")
	case c.RowSelector == "":
		return fmt.Errorf("listing: row selector is required")
	case c.NameSelector == "" || c.DateSelector == "" || c.LinkSelector == "":
		return fmt.Errorf("listing: name, date, and link selectors are required")
	case c.DateFormat == "":
		return fmt.Errorf("listing: date format is required")
	}
	return nil
}

// Adapter scrapes one court listing into candidate rows, preserving the
// page's own row order. Courts publish newest first; the pipeline's
// early-abort logic depends on that.
type Adapter struct {
	cfg    Config
	hasher *sha1.Hasher
}

// New builds an adapter from a validated config.
func New(cfg Config) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &Adapter{cfg: cfg, hasher: sha1.New()}, nil
}

// CourtID returns the adapter id.
func (a *Adapter) CourtID() string { return a.cfg.CourtID }

// Parse fetches the listing page and extracts rows. The listing hash is
// the fingerprint of the concatenated row texts, so cosmetic page
// changes outside the rows do not register as new content.
func (a *Adapter) Parse(ctx context.Context) (*scraper.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		items    []scraper.CandidateItem
		hashSrc  strings.Builder
		rowErrs  []error
		collyErr error
	)

	c := colly.NewCollector(colly.UserAgent(a.cfg.UserAgent))
	c.SetRequestTimeout(a.cfg.RequestTimeout)

	c.OnHTML(a.cfg.RowSelector, func(e *colly.HTMLElement) {
		name := strings.TrimSpace(e.ChildText(a.cfg.NameSelector))
		dateStr := strings.TrimSpace(e.ChildText(a.cfg.DateSelector))
		href := e.ChildAttr(a.cfg.LinkSelector, "href")
		if name == "" || dateStr == "" || href == "" {
			return
		}

		date, err := time.Parse(a.cfg.DateFormat, dateStr)
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %q: parse date %q: %w", name, dateStr, err))
			return
		}

		item := scraper.CandidateItem{
			CaseName:    name,
			Date:        date,
			DownloadURL: e.Request.AbsoluteURL(href),
		}
		if a.cfg.DocketSelector != "" {
			item.DocketNumber = strings.TrimSpace(e.ChildText(a.cfg.DocketSelector))
		}
		if a.cfg.CitationSelector != "" {
			if cite := strings.TrimSpace(e.ChildText(a.cfg.CitationSelector)); cite != "" {
				item.Citations = []string{cite}
			}
		}
		if a.cfg.StatusSelector != "" {
			item.PrecedentialStatus = strings.TrimSpace(e.ChildText(a.cfg.StatusSelector))
		}

		items = append(items, item)
		hashSrc.WriteString(name)
		hashSrc.WriteString(dateStr)
		hashSrc.WriteString(item.DownloadURL)
	})

	c.OnError(func(_ *colly.Response, err error) {
		collyErr = err
	})

	if err := c.Visit(a.cfg.URL); err != nil {
		return nil, fmt.Errorf("visit %s: %w", a.cfg.URL, err)
	}
	c.Wait()

	if collyErr != nil {
		return nil, fmt.Errorf("fetch listing %s: %w", a.cfg.URL, collyErr)
	}
	if len(rowErrs) > 0 {
		// A malformed row means the site changed shape; better to fail
		// the whole site than to silently drop rows.
		return nil, fmt.Errorf("parse listing %s: %w", a.cfg.URL, rowErrs[0])
	}

	hash, err := a.hasher.Hash([]byte(hashSrc.String()))
	if err != nil {
		return nil, fmt.Errorf("hash listing: %w", err)
	}

	return &scraper.Listing{
		URL:   a.cfg.URL,
		Hash:  hash,
		Items: items,
	}, nil
}
