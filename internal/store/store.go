// Package store persists translation runs and a per-segment translation
// memory in SQLite. The memory makes re-translating an updated PDF
// cheap: unchanged segments are served from disk instead of the API.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		pdf_path TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		segment_count INTEGER DEFAULT 0,
		status TEXT DEFAULT 'running',
		message TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS segment_memory (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		service_used TEXT,
		usage_count INTEGER DEFAULT 1,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, source_lang, target_lang)
	);

	CREATE INDEX IF NOT EXISTS idx_memory_lookup ON segment_memory(source_text, source_lang, target_lang);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateRun records the start of a document translation and returns the
// run ID.
func (s *Store) CreateRun(ctx context.Context, pdfPath, sourceLang, targetLang string, segmentCount int) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, pdf_path, source_lang, target_lang, segment_count) VALUES (?, ?, ?, ?, ?)`,
		id, pdfPath, sourceLang, targetLang, segmentCount)
	return id, err
}

// FinishRun marks a run completed or failed.
func (s *Store) FinishRun(ctx context.Context, runID, status, message string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, message = ?, updated_at = ? WHERE id = ?`,
		status, message, time.Now(), runID)
	return err
}

// GetCachedSegment looks a segment up in the translation memory and
// bumps its usage counter on a hit.
func (s *Store) GetCachedSegment(ctx context.Context, text, sourceLang, targetLang string) (string, bool, error) {
	var translated string

	err := s.db.QueryRowContext(ctx,
		`SELECT translated_text FROM segment_memory WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		normalizeText(text), sourceLang, targetLang).Scan(&translated)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE segment_memory SET usage_count = usage_count + 1, last_used = ? WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		time.Now(), normalizeText(text), sourceLang, targetLang)

	return translated, true, err
}

// SaveSegment stores one translated segment in the memory.
func (s *Store) SaveSegment(ctx context.Context, text, sourceLang, targetLang, translated, service string) error {
	id := fmt.Sprintf("seg_%d", time.Now().UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO segment_memory (id, source_text, source_lang, target_lang, translated_text, service_used, usage_count, last_used, created_at) VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		id, normalizeText(text), sourceLang, targetLang, translated, service, time.Now(), time.Now())
	return err
}

// MemoryEntry is a row from the segment_memory table.
type MemoryEntry struct {
	ID          string
	SourceText  string
	SourceLang  string
	TargetLang  string
	Translated  string
	ServiceUsed string
	UsageCount  int
	LastUsed    time.Time
}

// CacheStats summarises segment memory usage.
type CacheStats struct {
	TotalEntries int
	TotalUsage   int
}

// ListMemory returns all segment memory entries, most recently used first.
func (s *Store) ListMemory(ctx context.Context) ([]MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_text, source_lang, target_lang, translated_text, service_used, usage_count, last_used FROM segment_memory ORDER BY last_used DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MemoryEntry
	for rows.Next() {
		var e MemoryEntry
		if err := rows.Scan(&e.ID, &e.SourceText, &e.SourceLang, &e.TargetLang, &e.Translated, &e.ServiceUsed, &e.UsageCount, &e.LastUsed); err != nil {
			return nil, err
		}
		results = append(results, e)
	}

	return results, rows.Err()
}

// DeleteMemory removes a single entry by ID.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM segment_memory WHERE id = ?`, id)
	return err
}

// ClearMemory removes all segment memory entries.
func (s *Store) ClearMemory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM segment_memory`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats returns summary statistics for the segment memory.
func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(usage_count), 0) FROM segment_memory`).Scan(
		&stats.TotalEntries, &stats.TotalUsage)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// for consistent cache key comparison.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
