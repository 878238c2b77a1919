package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/b0risfosso/lang/internal/model"
)

// Sentences reference word ids by value. The store does not check the ids
// against lang_words: a sentence may reference words transiently or across
// snapshots, and callers own that integrity. Do not add validation here
// without treating it as a behavior change.

// CreateSentence stores a sentence with its ordered word-id list.
func (s *SQLiteStore) CreateSentence(ctx context.Context, wordIDs []int64, sentence string) (*model.Sentence, error) {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return nil, fmt.Errorf("sentence is required")
	}
	if len(wordIDs) == 0 {
		return nil, fmt.Errorf("lang_word_ids cannot be empty")
	}

	ids, err := json.Marshal(wordIDs)
	if err != nil {
		return nil, err
	}

	ts := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO lang_sentences (lang_word_ids, sentence, created_at, updated_at)
		 VALUES (?, ?, ?, ?)`, string(ids), sentence, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert sentence: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &model.Sentence{ID: id, WordIDs: wordIDs, Sentence: sentence, CreatedAt: ts, UpdatedAt: ts}, nil
}

// GetSentence retrieves a sentence by id.
func (s *SQLiteStore) GetSentence(ctx context.Context, id int64) (*model.Sentence, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, lang_word_ids, sentence, created_at, updated_at
		 FROM lang_sentences WHERE id = ?`, id)

	sent, err := scanSentence(row)
	if err == sql.ErrNoRows {
		return nil, notFound("lang_sentence", id)
	}
	if err != nil {
		return nil, err
	}
	return &sent, nil
}

// ListSentences returns sentences, most recently updated first.
func (s *SQLiteStore) ListSentences(ctx context.Context, limit int) ([]model.Sentence, error) {
	if limit <= 0 {
		limit = 1000
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lang_word_ids, sentence, created_at, updated_at
		 FROM lang_sentences ORDER BY updated_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Sentence
	for rows.Next() {
		sent, err := scanSentence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sent)
	}
	return out, rows.Err()
}

// DeleteSentence removes a sentence and its child sentences in one
// transaction.
func (s *SQLiteStore) DeleteSentence(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM lang_sentences WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return notFound("lang_sentence", id)
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM child_sentences WHERE lang_sentence_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM lang_sentences WHERE id = ?`, id); err != nil {
		return err
	}

	return tx.Commit()
}

// CreateChildSentence stores a child sentence under an existing sentence.
// Child word ids are stored by value, unvalidated, like sentence word ids.
func (s *SQLiteStore) CreateChildSentence(ctx context.Context, sentenceID int64, childWordIDs []int64, sentence string) (*model.ChildSentence, error) {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return nil, fmt.Errorf("sentence is required")
	}
	if len(childWordIDs) == 0 {
		return nil, fmt.Errorf("child_word_ids cannot be empty")
	}

	if _, err := s.GetSentence(ctx, sentenceID); err != nil {
		return nil, err
	}

	ids, err := json.Marshal(childWordIDs)
	if err != nil {
		return nil, err
	}

	ts := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO child_sentences (lang_sentence_id, child_word_ids, sentence, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`, sentenceID, string(ids), sentence, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert child sentence: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &model.ChildSentence{
		ID: id, SentenceID: sentenceID, ChildWordIDs: childWordIDs,
		Sentence: sentence, CreatedAt: ts, UpdatedAt: ts,
	}, nil
}

// GetChildSentence retrieves a child sentence by id.
func (s *SQLiteStore) GetChildSentence(ctx context.Context, id int64) (*model.ChildSentence, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, lang_sentence_id, child_word_ids, sentence, created_at, updated_at
		 FROM child_sentences WHERE id = ?`, id)

	cs, err := scanChildSentence(row)
	if err == sql.ErrNoRows {
		return nil, notFound("child_sentence", id)
	}
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

// ListChildSentences returns a sentence's child sentences, most recently
// updated first.
func (s *SQLiteStore) ListChildSentences(ctx context.Context, sentenceID int64) ([]model.ChildSentence, error) {
	if _, err := s.GetSentence(ctx, sentenceID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lang_sentence_id, child_word_ids, sentence, created_at, updated_at
		 FROM child_sentences WHERE lang_sentence_id = ?
		 ORDER BY updated_at DESC, id DESC`, sentenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ChildSentence
	for rows.Next() {
		cs, err := scanChildSentence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func scanSentence(row scanner) (model.Sentence, error) {
	var sent model.Sentence
	var ids string
	err := row.Scan(&sent.ID, &ids, &sent.Sentence, &sent.CreatedAt, &sent.UpdatedAt)
	if err != nil {
		return sent, err
	}
	json.Unmarshal([]byte(ids), &sent.WordIDs)
	return sent, nil
}

func scanChildSentence(row scanner) (model.ChildSentence, error) {
	var cs model.ChildSentence
	var ids string
	err := row.Scan(&cs.ID, &cs.SentenceID, &ids, &cs.Sentence, &cs.CreatedAt, &cs.UpdatedAt)
	if err != nil {
		return cs, err
	}
	json.Unmarshal([]byte(ids), &cs.ChildWordIDs)
	return cs, nil
}
