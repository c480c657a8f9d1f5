package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Test doubles shared by the pipeline tests. The pipeline is sequential,
// so none of these bother with locking.

type fakeArchive struct {
	fingerprints map[string]SiteFingerprint
	docs         map[string]Document // keyed by sha1
	audio        map[string]Audio    // keyed by sha1
	dockets      []Docket
	citations    []Citation
	markers      []string // "itemType:recordID"
	errorRows    []string // "courtID:level"

	fingerprintErr  error
	updateErr       error
	existsErr       error
	saveOpinionErr  error
	saveAudioErr    error
	saveCitationErr error
	citationErr     error
	markErr         error
	recordErrErr    error

	nextID int
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{
		fingerprints: make(map[string]SiteFingerprint),
		docs:         make(map[string]Document),
		audio:        make(map[string]Audio),
	}
}

func (a *fakeArchive) id(prefix string) string {
	a.nextID++
	return fmt.Sprintf("%s-%d", prefix, a.nextID)
}

func (a *fakeArchive) GetOrCreateFingerprint(_ context.Context, url string) (SiteFingerprint, bool, error) {
	if a.fingerprintErr != nil {
		return SiteFingerprint{}, false, a.fingerprintErr
	}
	if fp, ok := a.fingerprints[url]; ok {
		return fp, false, nil
	}
	fp := SiteFingerprint{URL: url}
	a.fingerprints[url] = fp
	return fp, true, nil
}

func (a *fakeArchive) UpdateFingerprint(_ context.Context, url, hash string) error {
	if a.updateErr != nil {
		return a.updateErr
	}
	a.fingerprints[url] = SiteFingerprint{URL: url, SHA1: hash}
	return nil
}

func (a *fakeArchive) DocumentExists(_ context.Context, sha1 string) (bool, error) {
	if a.existsErr != nil {
		return false, a.existsErr
	}
	_, ok := a.docs[sha1]
	return ok, nil
}

func (a *fakeArchive) AudioExists(_ context.Context, sha1 string) (bool, error) {
	if a.existsErr != nil {
		return false, a.existsErr
	}
	_, ok := a.audio[sha1]
	return ok, nil
}

func (a *fakeArchive) DocumentByHash(_ context.Context, sha1 string) (Document, error) {
	doc, ok := a.docs[sha1]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (a *fakeArchive) SaveOpinion(_ context.Context, cite *Citation, doc Document) (Document, error) {
	if a.saveOpinionErr != nil {
		return Document{}, a.saveOpinionErr
	}
	doc.ID = a.id("doc")
	if cite != nil {
		c := *cite
		c.ID = a.id("cite")
		c.DocumentID = doc.ID
		a.citations = append(a.citations, c)
		doc.CitationID = c.ID
	}
	a.docs[doc.SHA1] = doc
	return doc, nil
}

func (a *fakeArchive) SaveAudio(_ context.Context, docket Docket, audio Audio) (Audio, error) {
	if a.saveAudioErr != nil {
		return Audio{}, a.saveAudioErr
	}
	docket.ID = a.id("docket")
	a.dockets = append(a.dockets, docket)
	audio.ID = a.id("audio")
	audio.DocketID = docket.ID
	a.audio[audio.SHA1] = audio
	return audio, nil
}

func (a *fakeArchive) SaveCitation(_ context.Context, cite Citation) (Citation, error) {
	if a.saveCitationErr != nil {
		return Citation{}, a.saveCitationErr
	}
	cite.ID = a.id("cite")
	a.citations = append(a.citations, cite)
	return cite, nil
}

func (a *fakeArchive) CitationExists(_ context.Context, cite Citation) (bool, bool, error) {
	if a.citationErr != nil {
		return false, false, a.citationErr
	}
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

func (a *fakeArchive) MarkForIndexing(_ context.Context, itemType, recordID string) error {
	if a.markErr != nil {
		return a.markErr
	}
	a.markers = append(a.markers, itemType+":"+recordID)
	return nil
}

func (a *fakeArchive) RecordError(_ context.Context, courtID, level, _ string) error {
	if a.recordErrErr != nil {
		return a.recordErrErr
	}
	a.errorRows = append(a.errorRows, courtID+":"+level)
	return nil
}

// seedDocument marks content as already archived under the fake hasher's
// digest scheme.
func (a *fakeArchive) seedDocument(content string) {
	sha1 := fakeDigest([]byte(content))
	a.docs[sha1] = Document{ID: a.id("doc"), SHA1: sha1}
}

type fakeFetcher struct {
	pages map[string][]byte
	errs  map[string]error
	calls []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: make(map[string][]byte), errs: make(map[string]error)}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if body, ok := f.pages[url]; ok {
		return body, nil
	}
	return nil, &FetchError{URL: url, StatusCode: 404}
}

// fakeDigest is the deterministic hash scheme used by the fake hasher:
// readable in assertions, unique per content.
func fakeDigest(data []byte) string {
	return "sha-" + strings.ToLower(string(data))
}

type fakeHasher struct{}

func (fakeHasher) Hash(data []byte) (string, error) {
	return fakeDigest(data), nil
}

type fakeBlobStore struct {
	objects map[string][]byte
	err     error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (s *fakeBlobStore) PutObject(_ context.Context, path, _ string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.objects[path] = data
	return "fake://" + path, nil
}

type queuedTask struct {
	name     string
	recordID string
	delay    time.Duration
}

type fakeTaskQueue struct {
	tasks []queuedTask
	err   error
}

func (q *fakeTaskQueue) Enqueue(_ context.Context, task, recordID string, delay time.Duration) error {
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, queuedTask{name: task, recordID: recordID, delay: delay})
	return nil
}

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

type fakeSite struct {
	id       string
	listing  Listing
	parseErr error
}

func (s *fakeSite) CourtID() string { return s.id }

func (s *fakeSite) Parse(_ context.Context) (*Listing, error) {
	if s.parseErr != nil {
		return nil, s.parseErr
	}
	listing := s.listing
	listing.Items = append([]CandidateItem(nil), s.listing.Items...)
	return &listing, nil
}

// fakeCommitter records commits without any persistence side effects.
type fakeCommitter struct {
	commits []CandidateItem
	err     error
}

func (c *fakeCommitter) Commit(_ context.Context, item CandidateItem, _ []byte, _, _ string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.commits = append(c.commits, item)
	return fmt.Sprintf("committed-%d", len(c.commits)), nil
}

// day builds a date n days after a fixed epoch; tests only care about
// relative ordering.
func day(n int) time.Time {
	return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}
