// Package store persists the word graph, sentence compositions, task queue,
// and annotation trees in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the data-access layer on a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS lang_words (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		word       TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS lang_word_versions (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		lang_word_id INTEGER NOT NULL,
		version      INTEGER NOT NULL,
		created_at   TEXT NOT NULL,
		UNIQUE(lang_word_id, version),
		FOREIGN KEY (lang_word_id) REFERENCES lang_words(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_versions_lang_word_id ON lang_word_versions(lang_word_id);

	CREATE TABLE IF NOT EXISTS child_words (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		lang_word_version_id INTEGER NOT NULL,
		word                 TEXT NOT NULL,
		link                 TEXT,
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL,
		FOREIGN KEY (lang_word_version_id) REFERENCES lang_word_versions(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_child_words_version_id ON child_words(lang_word_version_id);
	CREATE INDEX IF NOT EXISTS idx_child_words_link ON child_words(link);

	CREATE TABLE IF NOT EXISTS lang_word_children (
		id                          INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_lang_word_version_id INTEGER NOT NULL,
		child_lang_word_id          INTEGER NOT NULL,
		created_at                  TEXT NOT NULL,
		UNIQUE(parent_lang_word_version_id, child_lang_word_id),
		FOREIGN KEY (parent_lang_word_version_id) REFERENCES lang_word_versions(id) ON DELETE CASCADE,
		FOREIGN KEY (child_lang_word_id) REFERENCES lang_words(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_lwc_parent_version ON lang_word_children(parent_lang_word_version_id);
	CREATE INDEX IF NOT EXISTS idx_lwc_child_word ON lang_word_children(child_lang_word_id);

	CREATE TABLE IF NOT EXISTS lang_sentences (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		lang_word_ids TEXT NOT NULL,
		sentence      TEXT NOT NULL,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_lang_sentences_updated ON lang_sentences(updated_at);

	CREATE TABLE IF NOT EXISTS child_sentences (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		lang_sentence_id INTEGER NOT NULL,
		child_word_ids   TEXT NOT NULL,
		sentence         TEXT NOT NULL,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL,
		FOREIGN KEY (lang_sentence_id) REFERENCES lang_sentences(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_child_sentences_lang_sentence_id ON child_sentences(lang_sentence_id);
	CREATE INDEX IF NOT EXISTS idx_child_sentences_updated ON child_sentences(updated_at);

	CREATE TABLE IF NOT EXISTS llm_tasks (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_lang_word_id INTEGER NOT NULL,
		task_type           TEXT NOT NULL,
		identifier          TEXT NOT NULL,
		payload             TEXT NOT NULL,
		status              TEXT NOT NULL DEFAULT 'queued',
		error               TEXT,
		result_writing_id   INTEGER,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL,
		FOREIGN KEY (parent_lang_word_id) REFERENCES lang_words(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_llm_tasks_status ON llm_tasks(status);
	CREATE INDEX IF NOT EXISTS idx_llm_tasks_parent_id ON llm_tasks(parent_lang_word_id);
	CREATE INDEX IF NOT EXISTS idx_llm_tasks_parent_status ON llm_tasks(parent_lang_word_id, status);
	CREATE INDEX IF NOT EXISTS idx_llm_tasks_created_at ON llm_tasks(created_at);

	CREATE TABLE IF NOT EXISTS temporary_writings (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_lang_word_id INTEGER NOT NULL,
		identifier          TEXT NOT NULL,
		prompt_type         TEXT NOT NULL,
		text                TEXT NOT NULL,
		model               TEXT,
		modifier            TEXT,
		task_id             INTEGER,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL,
		FOREIGN KEY (parent_lang_word_id) REFERENCES lang_words(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_temp_parent_id ON temporary_writings(parent_lang_word_id);
	CREATE INDEX IF NOT EXISTS idx_temp_parent_created ON temporary_writings(parent_lang_word_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_temp_prompt_type ON temporary_writings(prompt_type);
	CREATE INDEX IF NOT EXISTS idx_temp_created_at ON temporary_writings(created_at);

	CREATE TABLE IF NOT EXISTS langs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		text       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stars (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		lang_id        INTEGER NOT NULL,
		parent_star_id INTEGER,
		type           TEXT NOT NULL,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL,
		FOREIGN KEY (lang_id) REFERENCES langs(id) ON DELETE CASCADE,
		FOREIGN KEY (parent_star_id) REFERENCES stars(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_stars_lang_id ON stars(lang_id);
	CREATE INDEX IF NOT EXISTS idx_stars_parent ON stars(parent_star_id);

	CREATE TABLE IF NOT EXISTS star_texts (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		star_id    INTEGER NOT NULL,
		text       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (star_id) REFERENCES stars(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_star_texts_star_id ON star_texts(star_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// now returns the timestamp the store stamps into created_at/updated_at.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

type scanner interface {
	Scan(dest ...interface{}) error
}
