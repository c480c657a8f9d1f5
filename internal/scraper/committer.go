package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"path"
	"time"

	"go.uber.org/zap"
)

// Task names handed to the async processing workers.
const (
	TaskExtractDocContent = "extract_doc_content"
	TaskProcessAudioFile  = "process_audio_file"
)

// opinionFileNameLength and audioFileNameLength bound stored file names.
const (
	opinionFileNameLength = 80
	audioFileNameLength   = 75
)

// audioTaskJitterWindow bounds the randomized enqueue delay for audio
// processing, spreading transcription load across the worker pool.
const audioTaskJitterWindow = time.Hour

// OpinionCommitter persists new opinions: citation row, document row, the
// original binary, and the extraction task.
type OpinionCommitter struct {
	archive Archive
	blobs   BlobStore
	tasks   TaskQueue
	logger  *zap.Logger
}

// NewOpinionCommitter builds an opinion committer.
func NewOpinionCommitter(archive Archive, blobs BlobStore, tasks TaskQueue, logger *zap.Logger) *OpinionCommitter {
	return &OpinionCommitter{archive: archive, blobs: blobs, tasks: tasks, logger: logger}
}

// Commit stores the binary first and writes the citation/document rows
// only after the binary is durable, so a disk failure never leaves
// metadata pointing at a missing file.
func (c *OpinionCommitter) Commit(ctx context.Context, item CandidateItem, content []byte, sha1Hash, courtID string) (string, error) {
	cite := buildCitation(item)

	doc := Document{
		SHA1:               sha1Hash,
		CourtID:            courtID,
		CaseName:           item.CaseName,
		DateFiled:          item.Date,
		DownloadURL:        item.DownloadURL,
		Source:             SourceScraper,
		PrecedentialStatus: item.PrecedentialStatus,
	}

	ext, ok := DetectExtension(content)
	if !ok {
		ext = URLExtension(item.DownloadURL)
	}
	blobPath := path.Join(
		"opinions",
		courtID,
		item.Date.Format("2006-01-02"),
		FileName(item.CaseName, opinionFileNameLength, ext),
	)

	uri, err := c.blobs.PutObject(ctx, blobPath, http.DetectContentType(content), content)
	if err != nil {
		storageErr := &StorageError{Path: blobPath, Err: err}
		c.logger.Error("Unable to save binary to disk; document dropped",
			zap.String("court", courtID),
			zap.String("case_name", item.CaseName),
			zap.Error(storageErr),
		)
		c.recordError(ctx, courtID, "CRITICAL", storageErr.Error())
		return "", storageErr
	}
	doc.BlobURI = uri

	saved, err := c.archive.SaveOpinion(ctx, cite, doc)
	if err != nil {
		return "", fmt.Errorf("save opinion %q: %w", item.CaseName, err)
	}

	if err := c.tasks.Enqueue(ctx, TaskExtractDocContent, saved.ID, 0); err != nil {
		// The rows are committed; extraction will be picked up by the
		// periodic re-queue sweep.
		c.logger.Warn("Failed to enqueue extraction task",
			zap.String("document_id", saved.ID),
			zap.Error(err),
		)
	}
	return saved.ID, nil
}

func (c *OpinionCommitter) recordError(ctx context.Context, courtID, level, msg string) {
	if err := c.archive.RecordError(ctx, courtID, level, msg); err != nil {
		c.logger.Warn("Failed to record error log row", zap.Error(err))
	}
}

// buildCitation assembles the citation row from whatever citation fields
// the adapter provided. Nil when there is nothing parseable: absence must
// not write empty values.
func buildCitation(item CandidateItem) *Citation {
	for _, raw := range item.Citations {
		if cite, ok := ParseCitation(raw, CitationTypePrimary); ok {
			return &cite
		}
	}
	for _, raw := range item.ParallelCitations {
		if cite, ok := ParseCitation(raw, CitationTypeParallel); ok {
			return &cite
		}
	}
	return nil
}

// AudioCommitter persists new oral arguments: one docket per recording,
// the audio row referencing it, the original file, an indexing marker,
// and the jittered processing task.
type AudioCommitter struct {
	archive Archive
	blobs   BlobStore
	tasks   TaskQueue
	clock   Clock
	logger  *zap.Logger

	// jitter produces the enqueue delay; swappable for tests.
	jitter func() time.Duration
}

// NewAudioCommitter builds an audio committer.
func NewAudioCommitter(archive Archive, blobs BlobStore, tasks TaskQueue, clock Clock, logger *zap.Logger) *AudioCommitter {
	return &AudioCommitter{
		archive: archive,
		blobs:   blobs,
		tasks:   tasks,
		clock:   clock,
		logger:  logger,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(audioTaskJitterWindow))) //nolint:gosec // load spreading, not crypto
		},
	}
}

// Commit stores the recording and creates the docket/audio pair. Storage
// failure drops this item only; the orchestrator moves on to the next.
func (c *AudioCommitter) Commit(ctx context.Context, item CandidateItem, content []byte, sha1Hash, courtID string) (string, error) {
	var dateBlocked *time.Time
	if item.Blocked {
		today := c.clock.Now().Truncate(24 * time.Hour)
		dateBlocked = &today
	}

	docket := Docket{
		CourtID:       courtID,
		CaseName:      item.CaseName,
		CaseNameShort: item.CaseNameShort,
		DocketNumber:  item.DocketNumber,
		DateArgued:    item.Date,
		Blocked:       item.Blocked,
		DateBlocked:   dateBlocked,
	}
	audio := Audio{
		SHA1:          sha1Hash,
		CaseName:      item.CaseName,
		CaseNameShort: item.CaseNameShort,
		Judges:        item.Judges,
		DateArgued:    item.Date,
		DownloadURL:   item.DownloadURL,
		Source:        SourceScraper,
		Blocked:       item.Blocked,
		DateBlocked:   dateBlocked,
	}

	ext := AudioExtension(content, item.DownloadURL)
	blobPath := path.Join(
		"audio",
		courtID,
		item.Date.Format("2006-01-02"),
		FileName(item.CaseName, audioFileNameLength, ext),
	)

	uri, err := c.blobs.PutObject(ctx, blobPath, http.DetectContentType(content), content)
	if err != nil {
		storageErr := &StorageError{Path: blobPath, Err: err}
		c.logger.Error("Unable to save binary to disk; audio file dropped",
			zap.String("court", courtID),
			zap.String("case_name", item.CaseName),
			zap.Error(storageErr),
		)
		if recErr := c.archive.RecordError(ctx, courtID, "CRITICAL", storageErr.Error()); recErr != nil {
			c.logger.Warn("Failed to record error log row", zap.Error(recErr))
		}
		return "", storageErr
	}
	audio.BlobURI = uri

	saved, err := c.archive.SaveAudio(ctx, docket, audio)
	if err != nil {
		return "", fmt.Errorf("save audio %q: %w", item.CaseName, err)
	}

	if err := c.archive.MarkForIndexing(ctx, "oa", saved.ID); err != nil {
		c.logger.Warn("Failed to mark audio for indexing",
			zap.String("audio_id", saved.ID),
			zap.Error(err),
		)
	}

	if err := c.tasks.Enqueue(ctx, TaskProcessAudioFile, saved.ID, c.jitter()); err != nil {
		c.logger.Warn("Failed to enqueue audio processing task",
			zap.String("audio_id", saved.ID),
			zap.Error(err),
		)
	}
	return saved.ID, nil
}
