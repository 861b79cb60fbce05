// Package store persists a translation memory in SQLite: previously
// translated strings are reused across runs without touching a provider.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the translation memory at dbPath.
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
	CREATE TABLE IF NOT EXISTS translation_memory (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		provider TEXT,
		usage_count INTEGER DEFAULT 1,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, target_lang)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// GetCachedTranslation looks up a source string for a target language and
// bumps the usage counter on a hit.
func (s *Store) GetCachedTranslation(ctx context.Context, sourceText, targetLang string) (string, bool, error) {
	var id, translated string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, translated_text FROM translation_memory
		 WHERE source_text = ? AND target_lang = ?`,
		sourceText, targetLang).Scan(&id, &translated)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	_, _ = s.db.ExecContext(ctx,
		`UPDATE translation_memory
		 SET usage_count = usage_count + 1, last_used = CURRENT_TIMESTAMP
		 WHERE id = ?`, id)

	return translated, true, nil
}

// SaveToMemory records a translation, replacing an existing entry for the
// same source/target pair.
func (s *Store) SaveToMemory(ctx context.Context, sourceText, targetLang, translatedText, provider string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translation_memory (id, source_text, target_lang, translated_text, provider)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source_text, target_lang) DO UPDATE SET
		   translated_text = excluded.translated_text,
		   provider = excluded.provider,
		   last_used = CURRENT_TIMESTAMP`,
		uuid.New().String(), sourceText, targetLang, translatedText, provider)
	return err
}

// MemoryEntry is one row of the translation memory.
type MemoryEntry struct {
	ID             string
	SourceText     string
	TargetLang     string
	TranslatedText string
	Provider       string
	UsageCount     int
	LastUsed       time.Time
}

// ListMemory returns all entries, most recently used first.
func (s *Store) ListMemory(ctx context.Context) ([]MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_text, target_lang, translated_text,
		        COALESCE(provider, ''), usage_count, last_used
		 FROM translation_memory ORDER BY last_used DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []MemoryEntry
	for rows.Next() {
		var e MemoryEntry
		if err := rows.Scan(&e.ID, &e.SourceText, &e.TargetLang, &e.TranslatedText,
			&e.Provider, &e.UsageCount, &e.LastUsed); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CacheStats summarizes the translation memory.
type CacheStats struct {
	TotalEntries int
	TotalUsage   int
}

// Stats returns translation memory statistics.
func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(usage_count), 0) FROM translation_memory`).
		Scan(&stats.TotalEntries, &stats.TotalUsage)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// DeleteMemory removes one entry by ID.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory WHERE id = ?`, id)
	return err
}

// ClearMemory removes all entries and returns how many were deleted.
func (s *Store) ClearMemory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	return s.db.Close()
}
