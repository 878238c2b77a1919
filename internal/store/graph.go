package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/b0risfosso/lang/internal/model"
)

// LinkedWord is a word reachable from a version through an edge.
type LinkedWord struct {
	WordID int64  `json:"lang_word_id"`
	Word   string `json:"word"`
}

// VersionChildren is the full read model for one version: its free-text
// child words plus the words it links to.
type VersionChildren struct {
	VersionID  int64             `json:"version_id"`
	Version    int               `json:"version"`
	WordID     int64             `json:"lang_word_id"`
	Word       string            `json:"word"`
	ChildWords []model.ChildWord `json:"child_words"`
	ChildLangs []LinkedWord      `json:"child_lang_words"`
}

// TreeVersion is one version inside the write tree.
type TreeVersion struct {
	VersionID  int64             `json:"version_id"`
	Version    int               `json:"version"`
	CreatedAt  string            `json:"created_at"`
	ChildWords []model.ChildWord `json:"child_words"`
	ChildLangs []LinkedWord      `json:"child_lang_words"`
}

// TreeRoot is a root word (no incoming edge) with all of its versions.
type TreeRoot struct {
	WordID    int64         `json:"lang_word_id"`
	Word      string        `json:"word"`
	CreatedAt string        `json:"created_at"`
	Versions  []TreeVersion `json:"versions"`
}

// AddChildWord attaches a free-text phrase to a version.
func (s *SQLiteStore) AddChildWord(ctx context.Context, versionID int64, word, link string) (*model.ChildWord, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, fmt.Errorf("word is required")
	}

	if err := s.versionExists(ctx, versionID); err != nil {
		return nil, err
	}

	ts := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO child_words (lang_word_version_id, word, link, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		versionID, word, nullIfEmpty(link), ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert child word: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &model.ChildWord{
		ID: id, VersionID: versionID, Word: word, Link: strings.TrimSpace(link),
		CreatedAt: ts, UpdatedAt: ts,
	}, nil
}

// GetChildWord retrieves a child word by id.
func (s *SQLiteStore) GetChildWord(ctx context.Context, id int64) (*model.ChildWord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, lang_word_version_id, word, link, created_at, updated_at
		 FROM child_words WHERE id = ?`, id)
	c, err := scanChildWord(row)
	if err == sql.ErrNoRows {
		return nil, notFound("child_word", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateChildWord replaces a child word's text and link and refreshes
// updated_at.
func (s *SQLiteStore) UpdateChildWord(ctx context.Context, id int64, word, link string) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return fmt.Errorf("word is required")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE child_words SET word = ?, link = ?, updated_at = ? WHERE id = ?`,
		word, nullIfEmpty(link), now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("child_word", id)
	}
	return nil
}

// MoveChildWord re-homes a child word under a different version.
func (s *SQLiteStore) MoveChildWord(ctx context.Context, id, toVersionID int64) error {
	if _, err := s.GetChildWord(ctx, id); err != nil {
		return err
	}
	if err := s.versionExists(ctx, toVersionID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE child_words SET lang_word_version_id = ?, updated_at = ? WHERE id = ?`,
		toVersionID, now(), id)
	return err
}

// DeleteChildWord removes one child word.
func (s *SQLiteStore) DeleteChildWord(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM child_words WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("child_word", id)
	}
	return nil
}

// AddEdge links a parent version to a word. A duplicate (version, word)
// pair returns a ConflictError so callers can detect re-processing.
func (s *SQLiteStore) AddEdge(ctx context.Context, versionID, childWordID int64) (*model.Edge, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM lang_word_versions WHERE id = ?`, versionID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, notFound("lang_word_version", versionID)
	}
	if err != nil {
		return nil, err
	}
	if err := wordExistsTx(ctx, tx, childWordID); err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx,
		`SELECT id FROM lang_word_children
		 WHERE parent_lang_word_version_id = ? AND child_lang_word_id = ?`,
		versionID, childWordID).Scan(&exists)
	if err == nil {
		return nil, &ConflictError{Entity: "edge", Ref: fmt.Sprintf("%d->%d", versionID, childWordID)}
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	ts := now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO lang_word_children (parent_lang_word_version_id, child_lang_word_id, created_at)
		 VALUES (?, ?, ?)`, versionID, childWordID, ts)
	if err != nil {
		return nil, fmt.Errorf("insert edge: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.Edge{ID: id, ParentVersionID: versionID, ChildWordID: childWordID, CreatedAt: ts}, nil
}

// ListChildren returns a version's child words and linked words.
func (s *SQLiteStore) ListChildren(ctx context.Context, versionID int64) (*VersionChildren, error) {
	out := &VersionChildren{VersionID: versionID}
	err := s.db.QueryRowContext(ctx, `
		SELECT v.version, w.id, w.word
		FROM lang_word_versions v
		JOIN lang_words w ON w.id = v.lang_word_id
		WHERE v.id = ?`, versionID).
		Scan(&out.Version, &out.WordID, &out.Word)
	if err == sql.ErrNoRows {
		return nil, notFound("lang_word_version", versionID)
	}
	if err != nil {
		return nil, err
	}

	out.ChildWords, err = s.childWordsOf(ctx, versionID)
	if err != nil {
		return nil, err
	}
	out.ChildLangs, err = s.linkedWordsOf(ctx, versionID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WriteTree returns every root word (no incoming edge) with its versions,
// child words, and linked words. Traversal deeper than one hop is a read
// composition left to callers; the store performs no cycle detection.
func (s *SQLiteStore) WriteTree(ctx context.Context) ([]TreeRoot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.id, w.word, w.created_at
		FROM lang_words w
		WHERE NOT EXISTS (
			SELECT 1 FROM lang_word_children lwc WHERE lwc.child_lang_word_id = w.id
		)
		ORDER BY w.word ASC, w.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roots []TreeRoot
	for rows.Next() {
		var r TreeRoot
		if err := rows.Scan(&r.WordID, &r.Word, &r.CreatedAt); err != nil {
			return nil, err
		}
		roots = append(roots, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range roots {
		versions, err := s.treeVersionsOf(ctx, roots[i].WordID)
		if err != nil {
			return nil, err
		}
		roots[i].Versions = versions
	}
	return roots, nil
}

func (s *SQLiteStore) treeVersionsOf(ctx context.Context, wordID int64) ([]TreeVersion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, version, created_at FROM lang_word_versions
		 WHERE lang_word_id = ? ORDER BY version DESC`, wordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []TreeVersion
	for rows.Next() {
		var v TreeVersion
		if err := rows.Scan(&v.VersionID, &v.Version, &v.CreatedAt); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range versions {
		versions[i].ChildWords, err = s.childWordsOf(ctx, versions[i].VersionID)
		if err != nil {
			return nil, err
		}
		versions[i].ChildLangs, err = s.linkedWordsOf(ctx, versions[i].VersionID)
		if err != nil {
			return nil, err
		}
	}
	return versions, nil
}

func (s *SQLiteStore) childWordsOf(ctx context.Context, versionID int64) ([]model.ChildWord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lang_word_version_id, word, link, created_at, updated_at
		 FROM child_words WHERE lang_word_version_id = ?
		 ORDER BY created_at ASC, id ASC`, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ChildWord
	for rows.Next() {
		c, err := scanChildWord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) linkedWordsOf(ctx context.Context, versionID int64) ([]LinkedWord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.id, w.word
		FROM lang_word_children lwc
		JOIN lang_words w ON w.id = lwc.child_lang_word_id
		WHERE lwc.parent_lang_word_version_id = ?
		ORDER BY w.word ASC, w.id ASC`, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LinkedWord
	for rows.Next() {
		var l LinkedWord
		if err := rows.Scan(&l.WordID, &l.Word); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) versionExists(ctx context.Context, versionID int64) error {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM lang_word_versions WHERE id = ?`, versionID).Scan(&id)
	if err == sql.ErrNoRows {
		return notFound("lang_word_version", versionID)
	}
	return err
}

func scanChildWord(row scanner) (model.ChildWord, error) {
	var c model.ChildWord
	var link sql.NullString
	err := row.Scan(&c.ID, &c.VersionID, &c.Word, &link, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	if link.Valid {
		c.Link = link.String
	}
	return c, nil
}

func nullIfEmpty(s string) interface{} {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}
