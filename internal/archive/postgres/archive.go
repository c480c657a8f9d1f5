// Package postgres provides the Postgres-backed archive.
//
// Assumed schema:
//
//	CREATE TABLE site_fingerprints (
//	    url  TEXT PRIMARY KEY,
//	    sha1 TEXT NOT NULL DEFAULT '',
//	    date_modified TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//	CREATE TABLE citations (
//	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    document_id UUID,
//	    volume INT NOT NULL,
//	    reporter TEXT NOT NULL,
//	    page TEXT NOT NULL,
//	    cite_type TEXT NOT NULL,
//	    UNIQUE (document_id, volume, reporter, page, cite_type)
//	);
//	CREATE TABLE documents (
//	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    sha1 TEXT NOT NULL UNIQUE,
//	    court_id TEXT NOT NULL,
//	    case_name TEXT NOT NULL,
//	    date_filed DATE NOT NULL,
//	    download_url TEXT NOT NULL,
//	    source TEXT NOT NULL,
//	    precedential_status TEXT NOT NULL DEFAULT '',
//	    blob_uri TEXT NOT NULL,
//	    citation_id UUID REFERENCES citations (id)
//	);
//	CREATE TABLE dockets (
//	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    court_id TEXT NOT NULL,
//	    case_name TEXT NOT NULL,
//	    case_name_short TEXT NOT NULL DEFAULT '',
//	    docket_number TEXT NOT NULL DEFAULT '',
//	    date_argued DATE NOT NULL,
//	    blocked BOOLEAN NOT NULL DEFAULT FALSE,
//	    date_blocked DATE
//	);
//	CREATE TABLE audio (
//	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    docket_id UUID NOT NULL REFERENCES dockets (id),
//	    sha1 TEXT NOT NULL UNIQUE,
//	    case_name TEXT NOT NULL,
//	    case_name_short TEXT NOT NULL DEFAULT '',
//	    judges TEXT NOT NULL DEFAULT '',
//	    date_argued DATE NOT NULL,
//	    download_url TEXT NOT NULL,
//	    source TEXT NOT NULL,
//	    blob_uri TEXT NOT NULL,
//	    blocked BOOLEAN NOT NULL DEFAULT FALSE,
//	    date_blocked DATE
//	);
//	CREATE TABLE realtime_queue (
//	    id BIGSERIAL PRIMARY KEY,
//	    item_type TEXT NOT NULL,
//	    item_id UUID NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//	CREATE TABLE error_log (
//	    id BIGSERIAL PRIMARY KEY,
//	    court_id TEXT NOT NULL,
//	    log_level TEXT NOT NULL,
//	    message TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tactipus/courtlistener/internal/scraper"
)

// uniqueViolation is the Postgres error code for a uniqueness constraint.
const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the archive uses. pgxmock satisfies
// it for tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Archive implements scraper.Archive on Postgres.
type Archive struct {
	db DB
}

// New connects a pool and pings it to fail fast on bad configuration.
func New(ctx context.Context, dsn string) (*Archive, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Archive{db: pool}, nil
}

// NewWithDB constructs an archive from an existing pool (primarily for
// testing).
func NewWithDB(db DB) *Archive {
	return &Archive{db: db}
}

// Close releases the underlying pool.
func (a *Archive) Close() {
	if a != nil && a.db != nil {
		a.db.Close()
	}
}

// GetOrCreateFingerprint implements scraper.Archive.
func (a *Archive) GetOrCreateFingerprint(ctx context.Context, url string) (scraper.SiteFingerprint, bool, error) {
	tag, err := a.db.Exec(ctx, `
		INSERT INTO site_fingerprints (url) VALUES ($1)
		ON CONFLICT (url) DO NOTHING`, url)
	if err != nil {
		return scraper.SiteFingerprint{}, false, fmt.Errorf("create fingerprint: %w", err)
	}
	created := tag.RowsAffected() > 0

	var fp scraper.SiteFingerprint
	fp.URL = url
	err = a.db.QueryRow(ctx, `SELECT sha1 FROM site_fingerprints WHERE url = $1`, url).Scan(&fp.SHA1)
	if err != nil {
		return scraper.SiteFingerprint{}, false, fmt.Errorf("read fingerprint: %w", err)
	}
	return fp, created, nil
}

// UpdateFingerprint implements scraper.Archive.
func (a *Archive) UpdateFingerprint(ctx context.Context, url, hash string) error {
	tag, err := a.db.Exec(ctx, `
		UPDATE site_fingerprints SET sha1 = $2, date_modified = NOW()
		WHERE url = $1`, url, hash)
	if err != nil {
		return fmt.Errorf("update fingerprint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no fingerprint for %s: %w", url, scraper.ErrNotFound)
	}
	return nil
}

// DocumentExists implements scraper.Archive.
func (a *Archive) DocumentExists(ctx context.Context, sha1 string) (bool, error) {
	var exists bool
	err := a.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE sha1 = $1)`, sha1).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("document exists: %w", err)
	}
	return exists, nil
}

// AudioExists implements scraper.Archive.
func (a *Archive) AudioExists(ctx context.Context, sha1 string) (bool, error) {
	var exists bool
	err := a.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM audio WHERE sha1 = $1)`, sha1).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("audio exists: %w", err)
	}
	return exists, nil
}

// DocumentByHash implements scraper.Archive.
func (a *Archive) DocumentByHash(ctx context.Context, sha1 string) (scraper.Document, error) {
	var doc scraper.Document
	err := a.db.QueryRow(ctx, `
		SELECT id::text, sha1, court_id, case_name, date_filed, download_url,
		       source, precedential_status, blob_uri, COALESCE(citation_id::text, '')
		FROM documents WHERE sha1 = $1`, sha1).Scan(
		&doc.ID,
		&doc.SHA1,
		&doc.CourtID,
		&doc.CaseName,
		&doc.DateFiled,
		&doc.DownloadURL,
		&doc.Source,
		&doc.PrecedentialStatus,
		&doc.BlobURI,
		&doc.CitationID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return scraper.Document{}, scraper.ErrNotFound
		}
		return scraper.Document{}, fmt.Errorf("document by hash: %w", err)
	}
	return doc, nil
}

// SaveOpinion implements scraper.Archive. Citation first, then the
// document referencing it, inside one transaction so a failed document
// insert leaves no orphaned citation.
func (a *Archive) SaveOpinion(ctx context.Context, cite *scraper.Citation, doc scraper.Document) (scraper.Document, error) {
	tx, err := a.db.Begin(ctx)
	if err != nil {
		return scraper.Document{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var citationID *string
	if cite != nil {
		var id string
		err = tx.QueryRow(ctx, `
			INSERT INTO citations (volume, reporter, page, cite_type)
			VALUES ($1, $2, $3, $4)
			RETURNING id::text`,
			cite.Volume, cite.Reporter, cite.Page, string(cite.Type),
		).Scan(&id)
		if err != nil {
			return scraper.Document{}, fmt.Errorf("insert citation: %w", err)
		}
		citationID = &id
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO documents (
			sha1, court_id, case_name, date_filed, download_url,
			source, precedential_status, blob_uri, citation_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id::text`,
		doc.SHA1,
		doc.CourtID,
		doc.CaseName,
		doc.DateFiled,
		doc.DownloadURL,
		doc.Source,
		doc.PrecedentialStatus,
		doc.BlobURI,
		citationID,
	).Scan(&doc.ID)
	if err != nil {
		return scraper.Document{}, fmt.Errorf("insert document: %w", err)
	}
	if citationID != nil {
		doc.CitationID = *citationID
		if _, err := tx.Exec(ctx,
			`UPDATE citations SET document_id = $1 WHERE id = $2`, doc.ID, *citationID); err != nil {
			return scraper.Document{}, fmt.Errorf("link citation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return scraper.Document{}, fmt.Errorf("commit opinion: %w", err)
	}
	return doc, nil
}

// SaveAudio implements scraper.Archive. Docket first, then the audio row
// referencing it, in one transaction.
func (a *Archive) SaveAudio(ctx context.Context, docket scraper.Docket, audio scraper.Audio) (scraper.Audio, error) {
	tx, err := a.db.Begin(ctx)
	if err != nil {
		return scraper.Audio{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	err = tx.QueryRow(ctx, `
		INSERT INTO dockets (
			court_id, case_name, case_name_short, docket_number,
			date_argued, blocked, date_blocked
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text`,
		docket.CourtID,
		docket.CaseName,
		docket.CaseNameShort,
		docket.DocketNumber,
		docket.DateArgued,
		docket.Blocked,
		docket.DateBlocked,
	).Scan(&docket.ID)
	if err != nil {
		return scraper.Audio{}, fmt.Errorf("insert docket: %w", err)
	}

	audio.DocketID = docket.ID
	err = tx.QueryRow(ctx, `
		INSERT INTO audio (
			docket_id, sha1, case_name, case_name_short, judges,
			date_argued, download_url, source, blob_uri, blocked, date_blocked
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id::text`,
		audio.DocketID,
		audio.SHA1,
		audio.CaseName,
		audio.CaseNameShort,
		audio.Judges,
		audio.DateArgued,
		audio.DownloadURL,
		audio.Source,
		audio.BlobURI,
		audio.Blocked,
		audio.DateBlocked,
	).Scan(&audio.ID)
	if err != nil {
		return scraper.Audio{}, fmt.Errorf("insert audio: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return scraper.Audio{}, fmt.Errorf("commit audio: %w", err)
	}
	return audio, nil
}

// SaveCitation implements scraper.Archive. A uniqueness-constraint race
// surfaces as ErrDuplicateCitation for the caller to log and move past.
func (a *Archive) SaveCitation(ctx context.Context, cite scraper.Citation) (scraper.Citation, error) {
	err := a.db.QueryRow(ctx, `
		INSERT INTO citations (document_id, volume, reporter, page, cite_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text`,
		cite.DocumentID, cite.Volume, cite.Reporter, cite.Page, string(cite.Type),
	).Scan(&cite.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return scraper.Citation{}, scraper.ErrDuplicateCitation
		}
		return scraper.Citation{}, fmt.Errorf("insert citation: %w", err)
	}
	return cite, nil
}

// CitationExists implements scraper.Archive.
func (a *Archive) CitationExists(ctx context.Context, cite scraper.Citation) (bool, bool, error) {
	var exact bool
	err := a.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM citations
			WHERE document_id = $1 AND volume = $2 AND reporter = $3
			  AND page = $4 AND cite_type = $5
		)`,
		cite.DocumentID, cite.Volume, cite.Reporter, cite.Page, string(cite.Type),
	).Scan(&exact)
	if err != nil {
		return false, false, fmt.Errorf("citation exact check: %w", err)
	}

	var sameReporter bool
	err = a.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM citations
			WHERE document_id = $1 AND reporter = $2
		)`,
		cite.DocumentID, cite.Reporter,
	).Scan(&sameReporter)
	if err != nil {
		return false, false, fmt.Errorf("citation reporter check: %w", err)
	}
	return exact, sameReporter, nil
}

// MarkForIndexing implements scraper.Archive.
func (a *Archive) MarkForIndexing(ctx context.Context, itemType, recordID string) error {
	if _, err := a.db.Exec(ctx, `
		INSERT INTO realtime_queue (item_type, item_id) VALUES ($1, $2)`,
		itemType, recordID); err != nil {
		return fmt.Errorf("mark for indexing: %w", err)
	}
	return nil
}

// RecordError implements scraper.Archive.
func (a *Archive) RecordError(ctx context.Context, courtID, level, message string) error {
	if _, err := a.db.Exec(ctx, `
		INSERT INTO error_log (court_id, log_level, message) VALUES ($1, $2, $3)`,
		courtID, level, message); err != nil {
		return fmt.Errorf("record error: %w", err)
	}
	return nil
}
