// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

// Package archive persists analyzed policy records in a SQLite database
// with an FTS5 full-text index. The archive accumulates across pipeline
// runs, so analysts can search every policy the platform has ever
// analyzed, not just the latest table.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/zhiyuanplus/ai-policy-platform/internal/output"
	"github.com/zhiyuanplus/ai-policy-platform/pkg/types"
)

const (
	dbFile     = "policies.db"
	dateFormat = "2006-01-02"
)

// Store manages the policy archive SQLite database.
type Store struct {
	db         *sql.DB
	archiveDir string
	maxResults int
}

// NewStore opens or creates the archive database at
// archiveDir/policies.db, creating the schema if it does not exist.
func NewStore(cfg types.ArchiveConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.ArchiveDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(cfg.ArchiveDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, archiveDir: cfg.ArchiveDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS policies (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL,
			title TEXT NOT NULL,
			date TEXT,
			url TEXT,
			doc_type TEXT,
			ai_score INTEGER,
			regulatory_score INTEGER,
			domain_tags TEXT,
			enforcement_level TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_policies_source ON policies(source)`,
		`CREATE INDEX IF NOT EXISTS idx_policies_date ON policies(date)`,
		`CREATE TABLE IF NOT EXISTS ingest_status (
			file TEXT PRIMARY KEY,
			mod_time TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers that keep it in sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='policies_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		// The trigram tokenizer gives substring matching on unsegmented
		// Chinese titles; unicode61 would index each title as one token.
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE policies_fts USING fts5(title, content=policies, content_rowid=rowid, tokenize='trigram')`,
			`CREATE TRIGGER policies_ai AFTER INSERT ON policies BEGIN
				INSERT INTO policies_fts(rowid, title) VALUES (new.rowid, new.title);
			END`,
			`CREATE TRIGGER policies_ad AFTER DELETE ON policies BEGIN
				INSERT INTO policies_fts(policies_fts, rowid, title) VALUES('delete', old.rowid, old.title);
			END`,
			`CREATE TRIGGER policies_au AFTER UPDATE ON policies BEGIN
				INSERT INTO policies_fts(policies_fts, rowid, title) VALUES('delete', old.rowid, old.title);
				INSERT INTO policies_fts(rowid, title) VALUES (new.rowid, new.title);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// IngestSummary holds counts from one archive ingestion run.
type IngestSummary struct {
	Inserted int
	Updated  int
	Skipped  bool
}

// Ingest reads an analyzed table produced by the pipeline and upserts its
// rows into the archive. When the file is unchanged since the last
// ingestion the whole run is skipped.
func (s *Store) Ingest(ctx context.Context, tablePath string, w io.Writer) (IngestSummary, error) {
	info, err := os.Stat(tablePath)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("stat analyzed table: %w", err)
	}
	modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

	var storedModTime string
	err = s.db.QueryRowContext(ctx,
		`SELECT mod_time FROM ingest_status WHERE file = ?`, tablePath,
	).Scan(&storedModTime)
	if err == nil && storedModTime == modTime {
		fmt.Fprintf(w, "skipped %s (unchanged)\n", tablePath)
		return IngestSummary{Skipped: true}, nil
	}

	records, err := output.ReadTable(tablePath)
	if err != nil {
		return IngestSummary{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO policies (id, source, title, date, url, doc_type,
			ai_score, regulatory_score, domain_tags, enforcement_level)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			source=excluded.source, title=excluded.title, date=excluded.date,
			url=excluded.url, doc_type=excluded.doc_type,
			ai_score=excluded.ai_score, regulatory_score=excluded.regulatory_score,
			domain_tags=excluded.domain_tags, enforcement_level=excluded.enforcement_level`)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	var summary IngestSummary
	for _, r := range records {
		exists := 0
		if err := tx.QueryRowContext(ctx,
			`SELECT count(*) FROM policies WHERE id = ?`, r.ID,
		).Scan(&exists); err != nil {
			return summary, fmt.Errorf("checking policy %s: %w", r.ID, err)
		}

		dateStr := ""
		if r.HasDate() {
			dateStr = r.Date.Format(dateFormat)
		}
		tagsJSON, _ := json.Marshal(r.DomainTags)
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Source, r.Title, dateStr, r.URL, string(r.DocType),
			r.AIScore, r.RegulatoryScore, string(tagsJSON), string(r.EnforcementLevel),
		); err != nil {
			return summary, fmt.Errorf("upserting policy %s: %w", r.ID, err)
		}

		if exists > 0 {
			summary.Updated++
		} else {
			summary.Inserted++
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ingest_status (file, mod_time) VALUES (?, ?)
		 ON CONFLICT(file) DO UPDATE SET mod_time=excluded.mod_time`,
		tablePath, modTime,
	); err != nil {
		return summary, fmt.Errorf("updating ingest status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing ingestion: %w", err)
	}

	fmt.Fprintf(w, "archived %d new, %d updated from %s\n",
		summary.Inserted, summary.Updated, tablePath)
	return summary, nil
}
