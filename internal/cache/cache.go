package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"kvloc/internal/textutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS kvloc_translation_memory (
	language   TEXT        NOT NULL,
	hash       TEXT        NOT NULL,
	source     TEXT        NOT NULL,
	translated TEXT        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (language, hash)
)`

// DB is the subset of pgxpool.Pool the memory needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

// TranslationMemory remembers english→localized pairs per language, with an
// in-memory front over PostgreSQL.
type TranslationMemory struct {
	db       DB
	language string
	mu       sync.RWMutex
	memory   map[string]string // hash → translated text
}

// NewTranslationMemory creates a memory for one target language.
func NewTranslationMemory(db DB, language string) *TranslationMemory {
	return &TranslationMemory{
		db:       db,
		language: language,
		memory:   make(map[string]string),
	}
}

// EnsureSchema creates the backing table if needed.
func (m *TranslationMemory) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create translation memory table: %w", err)
	}
	return nil
}

// Get retrieves a remembered translation. Returns empty string and false if not found.
func (m *TranslationMemory) Get(ctx context.Context, sourceText string) (string, bool) {
	hash := textutil.Hash(sourceText)

	m.mu.RLock()
	if v, ok := m.memory[hash]; ok {
		m.mu.RUnlock()
		return v, true
	}
	m.mu.RUnlock()

	var translated string
	err := m.db.QueryRow(ctx,
		`SELECT translated FROM kvloc_translation_memory WHERE language = $1 AND hash = $2`,
		m.language, hash,
	).Scan(&translated)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Warn().Err(err).Str("text", textutil.Truncate(sourceText, 30)).Msg("Translation memory lookup failed")
		}
		return "", false
	}

	m.mu.Lock()
	m.memory[hash] = translated
	m.mu.Unlock()

	return translated, true
}

// Set stores a translation in both the in-memory map and PostgreSQL.
func (m *TranslationMemory) Set(ctx context.Context, sourceText, translated string) error {
	hash := textutil.Hash(sourceText)

	m.mu.Lock()
	m.memory[hash] = translated
	m.mu.Unlock()

	_, err := m.db.Exec(ctx, `
		INSERT INTO kvloc_translation_memory (language, hash, source, translated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (language, hash)
		DO UPDATE SET translated = EXCLUDED.translated, updated_at = now()
	`, m.language, hash, sourceText, translated)
	if err != nil {
		return fmt.Errorf("translation memory set: %w", err)
	}
	return nil
}

// Preload loads every remembered translation of the language into memory.
func (m *TranslationMemory) Preload(ctx context.Context) error {
	rows, err := m.db.Query(ctx,
		`SELECT hash, translated FROM kvloc_translation_memory WHERE language = $1`,
		m.language,
	)
	if err != nil {
		return fmt.Errorf("preload translation memory: %w", err)
	}

	type row struct {
		Hash       string
		Translated string
	}
	loaded, err := pgx.CollectRows(rows, pgx.RowToStructByPos[row])
	if err != nil {
		return fmt.Errorf("preload translation memory: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range loaded {
		m.memory[r.Hash] = r.Translated
	}

	log.Info().Int("count", len(loaded)).Str("language", m.language).Msg("Preloaded translation memory")
	return nil
}

// Lookup adapts Get to a context-bound lookup function.
func (m *TranslationMemory) Lookup(ctx context.Context) func(string) (string, bool) {
	return func(source string) (string, bool) {
		return m.Get(ctx, source)
	}
}
