package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath         string         `json:"db_path"`
	DBSizeBytes    int64          `json:"db_size_bytes"`
	Words          int            `json:"words"`
	Versions       int            `json:"versions"`
	ChildWords     int            `json:"child_words"`
	Edges          int            `json:"edges"`
	Sentences      int            `json:"sentences"`
	ChildSentences int            `json:"child_sentences"`
	Writings       int            `json:"writings"`
	TasksByStatus  map[string]int `json:"tasks_by_status,omitempty"`
	Langs          int            `json:"langs"`
	Stars          int            `json:"stars"`
	StarTexts      int            `json:"star_texts"`
}

// Stats returns row counts per table and the database file size.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM lang_words`, &st.Words},
		{`SELECT COUNT(*) FROM lang_word_versions`, &st.Versions},
		{`SELECT COUNT(*) FROM child_words`, &st.ChildWords},
		{`SELECT COUNT(*) FROM lang_word_children`, &st.Edges},
		{`SELECT COUNT(*) FROM lang_sentences`, &st.Sentences},
		{`SELECT COUNT(*) FROM child_sentences`, &st.ChildSentences},
		{`SELECT COUNT(*) FROM temporary_writings`, &st.Writings},
		{`SELECT COUNT(*) FROM langs`, &st.Langs},
		{`SELECT COUNT(*) FROM stars`, &st.Stars},
		{`SELECT COUNT(*) FROM star_texts`, &st.StarTexts},
	}
	for _, c := range counts {
		s.db.QueryRowContext(ctx, c.query).Scan(c.dest)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM llm_tasks GROUP BY status ORDER BY status`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		rows.Scan(&status, &n)
		if st.TasksByStatus == nil {
			st.TasksByStatus = map[string]int{}
		}
		st.TasksByStatus[status] = n
	}

	return st, nil
}
