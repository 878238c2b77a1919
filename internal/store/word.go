package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/b0risfosso/lang/internal/model"
)

// WordListing is a word with its newest version, as the list surface
// returns it.
type WordListing struct {
	ID              int64  `json:"lang_word_id"`
	Word            string `json:"word"`
	CreatedAt       string `json:"created_at"`
	LatestVersionID *int64 `json:"latest_version_id,omitempty"`
	LatestVersion   *int   `json:"latest_version,omitempty"`
}

// CreateWord creates a word. The text is unique; a duplicate returns a
// ConflictError.
func (s *SQLiteStore) CreateWord(ctx context.Context, word string) (*model.Word, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, fmt.Errorf("word is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM lang_words WHERE word = ?`, word).Scan(&existing)
	if err == nil {
		return nil, &ConflictError{Entity: "lang_word", Ref: word}
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	ts := now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO lang_words (word, created_at) VALUES (?, ?)`, word, ts)
	if err != nil {
		return nil, fmt.Errorf("insert word: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.Word{ID: id, Word: word, CreatedAt: ts}, nil
}

// GetWord retrieves a word by id.
func (s *SQLiteStore) GetWord(ctx context.Context, id int64) (*model.Word, error) {
	var w model.Word
	err := s.db.QueryRowContext(ctx,
		`SELECT id, word, created_at FROM lang_words WHERE id = ?`, id).
		Scan(&w.ID, &w.Word, &w.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, notFound("lang_word", id)
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetWordByText retrieves a word by its unique text.
func (s *SQLiteStore) GetWordByText(ctx context.Context, word string) (*model.Word, error) {
	var w model.Word
	err := s.db.QueryRowContext(ctx,
		`SELECT id, word, created_at FROM lang_words WHERE word = ?`, word).
		Scan(&w.ID, &w.Word, &w.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "lang_word", Ref: word}
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWords returns all words with their newest version, ordered by text.
func (s *SQLiteStore) ListWords(ctx context.Context) ([]WordListing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.id, w.word, w.created_at, v.id, v.version
		FROM lang_words w
		LEFT JOIN lang_word_versions v ON v.lang_word_id = w.id
			AND v.version = (SELECT MAX(version) FROM lang_word_versions WHERE lang_word_id = w.id)
		ORDER BY w.word ASC, w.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WordListing
	for rows.Next() {
		var l WordListing
		var vid sql.NullInt64
		var ver sql.NullInt64
		if err := rows.Scan(&l.ID, &l.Word, &l.CreatedAt, &vid, &ver); err != nil {
			return nil, err
		}
		if vid.Valid {
			l.LatestVersionID = &vid.Int64
			n := int(ver.Int64)
			l.LatestVersion = &n
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CreateVersion creates a version with a caller-assigned number. Returns a
// NotFoundError if the word is absent and a ConflictError if the word
// already has that version number.
func (s *SQLiteStore) CreateVersion(ctx context.Context, wordID int64, version int) (*model.WordVersion, error) {
	if version < 1 {
		return nil, fmt.Errorf("version must be >= 1, got %d", version)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := wordExistsTx(ctx, tx, wordID); err != nil {
		return nil, err
	}

	var existing int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM lang_word_versions WHERE lang_word_id = ? AND version = ?`,
		wordID, version).Scan(&existing)
	if err == nil {
		return nil, &ConflictError{Entity: "lang_word_version", Ref: fmt.Sprintf("%d/%d", wordID, version)}
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	ts := now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO lang_word_versions (lang_word_id, version, created_at) VALUES (?, ?, ?)`,
		wordID, version, ts)
	if err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.WordVersion{ID: id, WordID: wordID, Version: version, CreatedAt: ts}, nil
}

// EnsureVersion returns the word's newest version, creating version 1 when
// none exists yet.
func (s *SQLiteStore) EnsureVersion(ctx context.Context, wordID int64) (*model.WordVersion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := wordExistsTx(ctx, tx, wordID); err != nil {
		return nil, err
	}

	var v model.WordVersion
	err = tx.QueryRowContext(ctx,
		`SELECT id, lang_word_id, version, created_at FROM lang_word_versions
		 WHERE lang_word_id = ? ORDER BY version DESC LIMIT 1`, wordID).
		Scan(&v.ID, &v.WordID, &v.Version, &v.CreatedAt)
	if err == nil {
		return &v, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	created, err := insertVersionTx(ctx, tx, wordID, 1)
	if err != nil {
		return nil, err
	}
	return created, tx.Commit()
}

// NextVersion creates the word's next version (max+1, or 1 when none).
func (s *SQLiteStore) NextVersion(ctx context.Context, wordID int64) (*model.WordVersion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := wordExistsTx(ctx, tx, wordID); err != nil {
		return nil, err
	}

	v, err := nextVersionTx(ctx, tx, wordID)
	if err != nil {
		return nil, err
	}
	return v, tx.Commit()
}

// ListVersions returns a word's versions, newest first.
func (s *SQLiteStore) ListVersions(ctx context.Context, wordID int64) ([]model.WordVersion, error) {
	if _, err := s.GetWord(ctx, wordID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lang_word_id, version, created_at FROM lang_word_versions
		 WHERE lang_word_id = ? ORDER BY version DESC`, wordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.WordVersion
	for rows.Next() {
		var v model.WordVersion
		if err := rows.Scan(&v.ID, &v.WordID, &v.Version, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// DeleteWord removes a word and everything reachable from it: versions,
// child words, edges in both directions, tasks, and writings. The whole
// cascade runs in one transaction.
func (s *SQLiteStore) DeleteWord(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := wordExistsTx(ctx, tx, id); err != nil {
		return err
	}

	steps := []string{
		`DELETE FROM child_words WHERE lang_word_version_id IN
			(SELECT id FROM lang_word_versions WHERE lang_word_id = ?)`,
		`DELETE FROM lang_word_children WHERE parent_lang_word_version_id IN
			(SELECT id FROM lang_word_versions WHERE lang_word_id = ?)`,
		`DELETE FROM lang_word_children WHERE child_lang_word_id = ?`,
		`DELETE FROM llm_tasks WHERE parent_lang_word_id = ?`,
		`DELETE FROM temporary_writings WHERE parent_lang_word_id = ?`,
		`DELETE FROM lang_word_versions WHERE lang_word_id = ?`,
		`DELETE FROM lang_words WHERE id = ?`,
	}
	for _, q := range steps {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("delete word %d: %w", id, err)
		}
	}

	return tx.Commit()
}

// DeleteVersion removes one version with its child words and outgoing
// edges.
func (s *SQLiteStore) DeleteVersion(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM lang_word_versions WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return notFound("lang_word_version", id)
	}
	if err != nil {
		return err
	}

	steps := []string{
		`DELETE FROM child_words WHERE lang_word_version_id = ?`,
		`DELETE FROM lang_word_children WHERE parent_lang_word_version_id = ?`,
		`DELETE FROM lang_word_versions WHERE id = ?`,
	}
	for _, q := range steps {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("delete version %d: %w", id, err)
		}
	}

	return tx.Commit()
}

func wordExistsTx(ctx context.Context, tx *sql.Tx, wordID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM lang_words WHERE id = ?`, wordID).Scan(&id)
	if err == sql.ErrNoRows {
		return notFound("lang_word", wordID)
	}
	return err
}

func insertVersionTx(ctx context.Context, tx *sql.Tx, wordID int64, version int) (*model.WordVersion, error) {
	ts := now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO lang_word_versions (lang_word_id, version, created_at) VALUES (?, ?, ?)`,
		wordID, version, ts)
	if err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.WordVersion{ID: id, WordID: wordID, Version: version, CreatedAt: ts}, nil
}

// nextVersionTx creates version max+1 for a word inside an open
// transaction.
func nextVersionTx(ctx context.Context, tx *sql.Tx, wordID int64) (*model.WordVersion, error) {
	var last int
	err := tx.QueryRowContext(ctx,
		`SELECT version FROM lang_word_versions WHERE lang_word_id = ? ORDER BY version DESC LIMIT 1`,
		wordID).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return insertVersionTx(ctx, tx, wordID, last+1)
}
