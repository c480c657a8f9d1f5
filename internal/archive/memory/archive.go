// Package memory provides an in-memory archive for tests and local
// development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tactipus/courtlistener/internal/scraper"
)

// ErrorEntry is one recorded per-court error log row.
type ErrorEntry struct {
	CourtID string
	Level   string
	Message string
}

// IndexMarker records a committed item that still needs indexing.
type IndexMarker struct {
	ItemType string
	RecordID string
}

// Archive implements scraper.Archive with maps. Safe for concurrent use,
// although the pipeline itself is sequential.
type Archive struct {
	mu           sync.Mutex
	fingerprints map[string]scraper.SiteFingerprint
	docsBySHA1   map[string]scraper.Document
	audioBySHA1  map[string]scraper.Audio
	dockets      map[string]scraper.Docket
	citations    []scraper.Citation
	indexMarkers []IndexMarker
	errorLog     []ErrorEntry
}

// New creates an empty archive.
func New() *Archive {
	return &Archive{
		fingerprints: make(map[string]scraper.SiteFingerprint),
		docsBySHA1:   make(map[string]scraper.Document),
		audioBySHA1:  make(map[string]scraper.Audio),
		dockets:      make(map[string]scraper.Docket),
	}
}

// GetOrCreateFingerprint implements scraper.Archive.
func (a *Archive) GetOrCreateFingerprint(_ context.Context, url string) (scraper.SiteFingerprint, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if fp, ok := a.fingerprints[url]; ok {
		return fp, false, nil
	}
	fp := scraper.SiteFingerprint{URL: url}
	a.fingerprints[url] = fp
	return fp, true, nil
}

// UpdateFingerprint implements scraper.Archive.
func (a *Archive) UpdateFingerprint(_ context.Context, url, hash string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	fp, ok := a.fingerprints[url]
	if !ok {
		return fmt.Errorf("no fingerprint for %s: %w", url, scraper.ErrNotFound)
	}
	fp.SHA1 = hash
	a.fingerprints[url] = fp
	return nil
}

// DocumentExists implements scraper.Archive.
func (a *Archive) DocumentExists(_ context.Context, sha1 string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.docsBySHA1[sha1]
	return ok, nil
}

// AudioExists implements scraper.Archive.
func (a *Archive) AudioExists(_ context.Context, sha1 string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.audioBySHA1[sha1]
	return ok, nil
}

// DocumentByHash implements scraper.Archive.
func (a *Archive) DocumentByHash(_ context.Context, sha1 string) (scraper.Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	doc, ok := a.docsBySHA1[sha1]
	if !ok {
		return scraper.Document{}, scraper.ErrNotFound
	}
	return doc, nil
}

// SaveOpinion implements scraper.Archive. Citation first, then the
// document referencing it, mirroring the relational commit order.
func (a *Archive) SaveOpinion(_ context.Context, cite *scraper.Citation, doc scraper.Document) (scraper.Document, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, dup := a.docsBySHA1[doc.SHA1]; dup {
		return scraper.Document{}, fmt.Errorf("document with sha1 %s already archived", doc.SHA1)
	}

	doc.ID = uuid.NewString()
	if cite != nil {
		c := *cite
		c.ID = uuid.NewString()
		c.DocumentID = doc.ID
		a.citations = append(a.citations, c)
		doc.CitationID = c.ID
	}
	a.docsBySHA1[doc.SHA1] = doc
	return doc, nil
}

// SaveAudio implements scraper.Archive. Docket first, then the audio row
// referencing it.
func (a *Archive) SaveAudio(_ context.Context, docket scraper.Docket, audio scraper.Audio) (scraper.Audio, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, dup := a.audioBySHA1[audio.SHA1]; dup {
		return scraper.Audio{}, fmt.Errorf("audio with sha1 %s already archived", audio.SHA1)
	}

	docket.ID = uuid.NewString()
	a.dockets[docket.ID] = docket

	audio.ID = uuid.NewString()
	audio.DocketID = docket.ID
	a.audioBySHA1[audio.SHA1] = audio
	return audio, nil
}

// SaveCitation implements scraper.Archive. An exact key collision plays
// the role of the relational uniqueness constraint.
func (a *Archive) SaveCitation(_ context.Context, cite scraper.Citation) (scraper.Citation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, existing := range a.citations {
		if existing.DocumentID == cite.DocumentID && existing.Key() == cite.Key() {
			return scraper.Citation{}, scraper.ErrDuplicateCitation
		}
	}
	cite.ID = uuid.NewString()
	a.citations = append(a.citations, cite)
	return cite, nil
}

// CitationExists implements scraper.Archive.
func (a *Archive) CitationExists(_ context.Context, cite scraper.Citation) (bool, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var exact, sameReporter bool
	for _, existing := range a.citations {
		if existing.DocumentID != cite.DocumentID {
			continue
		}
		if existing.Key() == cite.Key() {
			exact = true
		}
		if existing.Reporter == cite.Reporter {
			sameReporter = true
		}
	}
	return exact, sameReporter, nil
}

// MarkForIndexing implements scraper.Archive.
func (a *Archive) MarkForIndexing(_ context.Context, itemType, recordID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.indexMarkers = append(a.indexMarkers, IndexMarker{ItemType: itemType, RecordID: recordID})
	return nil
}

// RecordError implements scraper.Archive.
func (a *Archive) RecordError(_ context.Context, courtID, level, message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errorLog = append(a.errorLog, ErrorEntry{CourtID: courtID, Level: level, Message: message})
	return nil
}

// Fingerprint returns the stored fingerprint for a URL, for inspection.
func (a *Archive) Fingerprint(url string) (scraper.SiteFingerprint, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fp, ok := a.fingerprints[url]
	return fp, ok
}

// Documents returns all archived documents.
func (a *Archive) Documents() []scraper.Document {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]scraper.Document, 0, len(a.docsBySHA1))
	for _, doc := range a.docsBySHA1 {
		out = append(out, doc)
	}
	return out
}

// AudioRecords returns all archived audio rows.
func (a *Archive) AudioRecords() []scraper.Audio {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]scraper.Audio, 0, len(a.audioBySHA1))
	for _, rec := range a.audioBySHA1 {
		out = append(out, rec)
	}
	return out
}

// Dockets returns all archived dockets.
func (a *Archive) Dockets() []scraper.Docket {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]scraper.Docket, 0, len(a.dockets))
	for _, d := range a.dockets {
		out = append(out, d)
	}
	return out
}

// Citations returns all stored citations.
func (a *Archive) Citations() []scraper.Citation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]scraper.Citation(nil), a.citations...)
}

// IndexMarkers returns the recorded needs-indexing markers.
func (a *Archive) IndexMarkers() []IndexMarker {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]IndexMarker(nil), a.indexMarkers...)
}

// ErrorLog returns the recorded error rows.
func (a *Archive) ErrorLog() []ErrorEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]ErrorEntry(nil), a.errorLog...)
}
