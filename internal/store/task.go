package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/b0risfosso/lang/internal/model"
)

// EnqueueParams holds parameters for enqueuing a task. Identifier and
// payload are stored verbatim; nil defaults to an empty JSON object.
type EnqueueParams struct {
	WordID     int64
	TaskType   string
	Identifier json.RawMessage
	Payload    json.RawMessage
}

// ListTasksParams holds filters for listing tasks.
type ListTasksParams struct {
	WordID int64 // 0 means any word
	Status string
	Limit  int
}

// RecordWritingParams holds parameters for staging raw generation output.
type RecordWritingParams struct {
	WordID     int64
	Identifier json.RawMessage
	PromptType string
	Text       json.RawMessage
	Model      string
	Modifier   string
	TaskID     int64 // 0 means no back-reference
}

// ListWritingsParams holds filters for listing writings.
type ListWritingsParams struct {
	WordID     int64
	PromptType string
	Limit      int
}

// Enqueue creates a task in status queued.
func (s *SQLiteStore) Enqueue(ctx context.Context, p EnqueueParams) (*model.Task, error) {
	if strings.TrimSpace(p.TaskType) == "" {
		return nil, fmt.Errorf("task_type is required")
	}
	if _, err := s.GetWord(ctx, p.WordID); err != nil {
		return nil, err
	}

	identifier := rawOrEmpty(p.Identifier)
	payload := rawOrEmpty(p.Payload)

	ts := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO llm_tasks (parent_lang_word_id, task_type, identifier, payload, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.WordID, p.TaskType, identifier, payload, model.StatusQueued, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &model.Task{
		ID: id, ParentWordID: p.WordID, TaskType: p.TaskType,
		Identifier: json.RawMessage(identifier), Payload: json.RawMessage(payload),
		Status: model.StatusQueued, CreatedAt: ts, UpdatedAt: ts,
	}, nil
}

// ActiveTask returns the newest queued or running task of a type for a
// word, or nil when there is none. Callers use it to avoid enqueuing
// duplicate work.
func (s *SQLiteStore) ActiveTask(ctx context.Context, wordID int64, taskType string) (*model.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, parent_lang_word_id, task_type, identifier, payload, status, error, result_writing_id, created_at, updated_at
		FROM llm_tasks
		WHERE parent_lang_word_id = ? AND task_type = ? AND status IN (?, ?)
		ORDER BY id DESC LIMIT 1`,
		wordID, taskType, model.StatusQueued, model.StatusRunning)

	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Claim transitions a task from queued to running. The transition is a
// single conditional UPDATE, so at most one caller moves a given task out
// of queued. Any other current status yields a StateError.
func (s *SQLiteStore) Claim(ctx context.Context, taskID int64) (*model.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE llm_tasks SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		model.StatusRunning, now(), taskID, model.StatusQueued)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, s.transitionError(ctx, taskID, "claim")
	}
	return s.GetTask(ctx, taskID)
}

// ClaimNext claims the oldest queued task. Returns (nil, nil) when the
// queue is empty. Lost races against concurrent claimers are retried on
// the next queued task.
func (s *SQLiteStore) ClaimNext(ctx context.Context) (*model.Task, error) {
	for {
		var id int64
		err := s.db.QueryRowContext(ctx,
			`SELECT id FROM llm_tasks WHERE status = ? ORDER BY id ASC LIMIT 1`,
			model.StatusQueued).Scan(&id)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		res, err := s.db.ExecContext(ctx,
			`UPDATE llm_tasks SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			model.StatusRunning, now(), id, model.StatusQueued)
		if err != nil {
			return nil, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n == 1 {
			return s.GetTask(ctx, id)
		}
	}
}

// Complete transitions a task from running to done and records the result
// writing id.
func (s *SQLiteStore) Complete(ctx context.Context, taskID, resultWritingID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE llm_tasks SET status = ?, result_writing_id = ?, error = NULL, updated_at = ?
		 WHERE id = ? AND status = ?`,
		model.StatusDone, resultWritingID, now(), taskID, model.StatusRunning)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return s.transitionError(ctx, taskID, "complete")
	}
	return nil
}

// Fail transitions a task from running to error with a message. Retry on
// error is a worker decision; the store only records final disposition.
func (s *SQLiteStore) Fail(ctx context.Context, taskID int64, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE llm_tasks SET status = ?, error = ?, updated_at = ? WHERE id = ? AND status = ?`,
		model.StatusError, message, now(), taskID, model.StatusRunning)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return s.transitionError(ctx, taskID, "fail")
	}
	return nil
}

// GetTask retrieves a task by id.
func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, parent_lang_word_id, task_type, identifier, payload, status, error, result_writing_id, created_at, updated_at
		FROM llm_tasks WHERE id = ?`, id)

	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, notFound("task", id)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasks returns tasks matching the filters, oldest first.
func (s *SQLiteStore) ListTasks(ctx context.Context, p ListTasksParams) ([]model.Task, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 100
	}

	where := []string{"1=1"}
	args := []interface{}{}
	if p.WordID != 0 {
		where = append(where, "parent_lang_word_id = ?")
		args = append(args, p.WordID)
	}
	if p.Status != "" {
		if !model.ValidStatuses[p.Status] {
			return nil, fmt.Errorf("invalid status %q", p.Status)
		}
		where = append(where, "status = ?")
		args = append(args, p.Status)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT id, parent_lang_word_id, task_type, identifier, payload, status, error, result_writing_id, created_at, updated_at
		FROM llm_tasks WHERE %s ORDER BY id ASC LIMIT ?`, strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// RecordWriting stages raw generation output for a word. It is independent
// of task transitions and may be called multiple times per task; writings
// are never deleted by task lifecycle.
func (s *SQLiteStore) RecordWriting(ctx context.Context, p RecordWritingParams) (*model.Writing, error) {
	if strings.TrimSpace(p.PromptType) == "" {
		return nil, fmt.Errorf("prompt_type is required")
	}
	if len(p.Text) == 0 {
		return nil, fmt.Errorf("text is required")
	}
	if _, err := s.GetWord(ctx, p.WordID); err != nil {
		return nil, err
	}

	var taskID interface{}
	if p.TaskID != 0 {
		taskID = p.TaskID
	}

	ts := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO temporary_writings (parent_lang_word_id, identifier, prompt_type, text, model, modifier, task_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.WordID, rawOrEmpty(p.Identifier), p.PromptType, string(p.Text),
		nullIfEmpty(p.Model), nullIfEmpty(p.Modifier), taskID, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert writing: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	w := &model.Writing{
		ID: id, ParentWordID: p.WordID,
		Identifier: json.RawMessage(rawOrEmpty(p.Identifier)),
		PromptType: p.PromptType, Text: p.Text,
		Model: strings.TrimSpace(p.Model), Modifier: strings.TrimSpace(p.Modifier),
		CreatedAt: ts, UpdatedAt: ts,
	}
	if p.TaskID != 0 {
		tid := p.TaskID
		w.TaskID = &tid
	}
	return w, nil
}

// GetWriting retrieves a writing by id.
func (s *SQLiteStore) GetWriting(ctx context.Context, id int64) (*model.Writing, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, parent_lang_word_id, identifier, prompt_type, text, model, modifier, task_id, created_at, updated_at
		FROM temporary_writings WHERE id = ?`, id)

	w, err := scanWriting(row)
	if err == sql.ErrNoRows {
		return nil, notFound("temporary_writing", id)
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// DeleteWriting discards a staged writing without applying it.
func (s *SQLiteStore) DeleteWriting(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM temporary_writings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("temporary_writing", id)
	}
	return nil
}

// ListWritings returns writings matching the filters, newest first.
func (s *SQLiteStore) ListWritings(ctx context.Context, p ListWritingsParams) ([]model.Writing, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 50
	}

	where := []string{"1=1"}
	args := []interface{}{}
	if p.WordID != 0 {
		where = append(where, "parent_lang_word_id = ?")
		args = append(args, p.WordID)
	}
	if p.PromptType != "" {
		where = append(where, "prompt_type = ?")
		args = append(args, p.PromptType)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT id, parent_lang_word_id, identifier, prompt_type, text, model, modifier, task_id, created_at, updated_at
		FROM temporary_writings WHERE %s ORDER BY id DESC LIMIT ?`, strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Writing
	for rows.Next() {
		w, err := scanWriting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// transitionError distinguishes a missing task from an invalid transition
// after a conditional update matched no row.
func (s *SQLiteStore) transitionError(ctx context.Context, taskID int64, op string) error {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM llm_tasks WHERE id = ?`, taskID).Scan(&status)
	if err == sql.ErrNoRows {
		return notFound("task", taskID)
	}
	if err != nil {
		return err
	}
	return &StateError{TaskID: taskID, Status: status, Op: op}
}

func scanTask(row scanner) (model.Task, error) {
	var t model.Task
	var identifier, payload string
	var errMsg sql.NullString
	var writingID sql.NullInt64
	err := row.Scan(&t.ID, &t.ParentWordID, &t.TaskType, &identifier, &payload,
		&t.Status, &errMsg, &writingID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	t.Identifier = json.RawMessage(identifier)
	t.Payload = json.RawMessage(payload)
	if errMsg.Valid {
		t.Error = errMsg.String
	}
	if writingID.Valid {
		t.ResultWritingID = &writingID.Int64
	}
	return t, nil
}

func scanWriting(row scanner) (model.Writing, error) {
	var w model.Writing
	var identifier, text string
	var mdl, modifier sql.NullString
	var taskID sql.NullInt64
	err := row.Scan(&w.ID, &w.ParentWordID, &identifier, &w.PromptType, &text,
		&mdl, &modifier, &taskID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return w, err
	}
	w.Identifier = json.RawMessage(identifier)
	w.Text = json.RawMessage(text)
	if mdl.Valid {
		w.Model = mdl.String
	}
	if modifier.Valid {
		w.Modifier = modifier.String
	}
	if taskID.Valid {
		w.TaskID = &taskID.Int64
	}
	return w, nil
}

func rawOrEmpty(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}
