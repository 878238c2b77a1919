package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/b0risfosso/lang/internal/model"
)

// CreatedTheme is one theme word materialized by ApplyWriting.
type CreatedTheme struct {
	WordID    int64  `json:"child_lang_word_id"`
	Word      string `json:"word"`
	VersionID int64  `json:"child_version_id"`
}

// ApplyResult summarizes what ApplyWriting materialized.
type ApplyResult struct {
	WritingID       int64          `json:"writing_id"`
	ParentWordID    int64          `json:"parent_lang_word_id"`
	ParentVersionID int64          `json:"parent_version_id"`
	Created         []CreatedTheme `json:"created"`
}

// ApplyWriting materializes a create_lang_words writing into the graph:
// a new version of the parent word, one theme word per theme (created or
// reused by unique text, with a fresh version so orbiting phrases never
// mutate old versions), an edge from the new parent version to each theme
// word, and the orbiting phrases as child words under each theme's
// version. The consumed writing is deleted. Everything runs in one
// transaction.
func (s *SQLiteStore) ApplyWriting(ctx context.Context, writingID int64) (*ApplyResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var parentID int64
	var promptType, text string
	err = tx.QueryRowContext(ctx,
		`SELECT parent_lang_word_id, prompt_type, text FROM temporary_writings WHERE id = ?`,
		writingID).Scan(&parentID, &promptType, &text)
	if err == sql.ErrNoRows {
		return nil, notFound("temporary_writing", writingID)
	}
	if err != nil {
		return nil, err
	}
	if promptType != model.PromptTypeCreateLangWords {
		return nil, fmt.Errorf("writing %d has prompt_type %q, want %q", writingID, promptType, model.PromptTypeCreateLangWords)
	}

	var plan model.ThemePlan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		return nil, fmt.Errorf("writing %d: invalid theme plan: %w", writingID, err)
	}

	parentVersion, err := nextVersionTx(ctx, tx, parentID)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{
		WritingID:       writingID,
		ParentWordID:    parentID,
		ParentVersionID: parentVersion.ID,
	}

	for _, theme := range plan.Themes {
		word := strings.TrimSpace(theme.Theme)
		if word == "" {
			continue
		}

		var themeWordID int64
		var themeVersion *model.WordVersion
		err := tx.QueryRowContext(ctx, `SELECT id FROM lang_words WHERE word = ?`, word).Scan(&themeWordID)
		switch {
		case err == sql.ErrNoRows:
			res, err := tx.ExecContext(ctx,
				`INSERT INTO lang_words (word, created_at) VALUES (?, ?)`, word, now())
			if err != nil {
				return nil, fmt.Errorf("insert theme word: %w", err)
			}
			themeWordID, err = res.LastInsertId()
			if err != nil {
				return nil, err
			}
			themeVersion, err = insertVersionTx(ctx, tx, themeWordID, 1)
			if err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			themeVersion, err = nextVersionTx(ctx, tx, themeWordID)
			if err != nil {
				return nil, err
			}
		}

		// Re-applying a writing may hit an existing edge; that is not an
		// error here, unlike AddEdge.
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO lang_word_children (parent_lang_word_version_id, child_lang_word_id, created_at)
			 VALUES (?, ?, ?)`, parentVersion.ID, themeWordID, now())
		if err != nil {
			return nil, fmt.Errorf("insert theme edge: %w", err)
		}

		for _, phrase := range theme.OrbitingPhrases {
			phrase = strings.TrimSpace(phrase)
			if phrase == "" {
				continue
			}
			ts := now()
			_, err := tx.ExecContext(ctx,
				`INSERT INTO child_words (lang_word_version_id, word, link, created_at, updated_at)
				 VALUES (?, ?, NULL, ?, ?)`, themeVersion.ID, phrase, ts, ts)
			if err != nil {
				return nil, fmt.Errorf("insert orbiting phrase: %w", err)
			}
		}

		result.Created = append(result.Created, CreatedTheme{
			WordID: themeWordID, Word: word, VersionID: themeVersion.ID,
		})
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM temporary_writings WHERE id = ?`, writingID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}
