package export

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/loganrooks/scholardoc/internal/document"
)

// sqliteSchema is the tabular persistence layout fixed by spec §6, for
// documents too large to export comfortably as a single JSON blob.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS metadata (key TEXT PRIMARY KEY, value TEXT);
CREATE TABLE IF NOT EXISTS content (text TEXT);
CREATE TABLE IF NOT EXISTS pages (idx INTEGER, start INTEGER, end INTEGER, label TEXT);
CREATE TABLE IF NOT EXISTS sections (start INTEGER, end INTEGER, title TEXT, level INTEGER);
CREATE TABLE IF NOT EXISTS flags (offset INTEGER, reason TEXT, confidence REAL);
CREATE INDEX IF NOT EXISTS idx_pages_start ON pages(start);
CREATE INDEX IF NOT EXISTS idx_flags_offset ON flags(offset);
`

// SQLite writes doc to a fresh SQLite database at path, per the §6
// tabular schema. The caller is responsible for not reusing an existing
// path that already holds an unrelated database.
func SQLite(path string, doc document.ScholarDocument, metadata map[string]string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("export: open sqlite database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("export: create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("export: begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO content(text) VALUES (?)`, doc.Text); err != nil {
		return fmt.Errorf("export: insert content: %w", err)
	}

	for key, value := range metadata {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO metadata(key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("export: insert metadata %q: %w", key, err)
		}
	}

	pageStmt, err := tx.Prepare(`INSERT INTO pages(idx, start, end, label) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("export: prepare pages insert: %w", err)
	}
	defer pageStmt.Close()
	for _, p := range doc.PageSpans {
		if _, err := pageStmt.Exec(p.Page, p.StartOffset, p.EndOffset, p.PrintedPage); err != nil {
			return fmt.Errorf("export: insert page %d: %w", p.Page, err)
		}
	}

	sectionStmt, err := tx.Prepare(`INSERT INTO sections(start, end, title, level) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("export: prepare sections insert: %w", err)
	}
	defer sectionStmt.Close()
	for _, s := range doc.SectionSpans {
		if _, err := sectionStmt.Exec(s.Start, s.End, s.Title, s.Level); err != nil {
			return fmt.Errorf("export: insert section %q: %w", s.Title, err)
		}
	}

	flagStmt, err := tx.Prepare(`INSERT INTO flags(offset, reason, confidence) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("export: prepare flags insert: %w", err)
	}
	defer flagStmt.Close()
	for _, f := range doc.FlaggedWords {
		if _, err := flagStmt.Exec(f.Offset, string(f.Reason), f.Confidence); err != nil {
			return fmt.Errorf("export: insert flag at offset %d: %w", f.Offset, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("export: commit transaction: %w", err)
	}
	return nil
}
