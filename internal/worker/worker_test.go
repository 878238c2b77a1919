package worker

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/b0risfosso/lang/internal/model"
	"github.com/b0risfosso/lang/internal/store"
)

type fakeRunner struct {
	result *Result
	err    error
	tasks  []int64
}

func (r *fakeRunner) Run(ctx context.Context, task *model.Task) (*Result, error) {
	r.tasks = append(r.tasks, task.ID)
	return r.result, r.err
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func enqueue(t *testing.T, s *store.SQLiteStore) *model.Task {
	t.Helper()
	ctx := context.Background()
	w, err := s.CreateWord(ctx, "alpha")
	if err != nil {
		t.Fatalf("create word: %v", err)
	}
	task, err := s.Enqueue(ctx, store.EnqueueParams{
		WordID:   w.ID,
		TaskType: model.PromptTypeCreateLangWords,
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return task
}

func TestProcessOneSuccess(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	task := enqueue(t, s)

	runner := &fakeRunner{result: &Result{
		Text:  json.RawMessage(`{"themes":[]}`),
		Model: "gpt-4o",
	}}
	w := New(s, runner, nil, 0)
	if w.ID() == "" {
		t.Error("expected non-empty worker id")
	}

	processed, err := w.ProcessOne(ctx)
	if err != nil {
		t.Fatalf("process one: %v", err)
	}
	if !processed {
		t.Fatal("expected a task to be processed")
	}
	if len(runner.tasks) != 1 || runner.tasks[0] != task.ID {
		t.Fatalf("expected runner to see task %d, got %v", task.ID, runner.tasks)
	}

	got, err := s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != model.StatusDone {
		t.Errorf("expected done, got %q", got.Status)
	}
	if got.ResultWritingID == nil {
		t.Fatal("expected result_writing_id to be set")
	}

	writing, err := s.GetWriting(ctx, *got.ResultWritingID)
	if err != nil {
		t.Fatalf("get writing: %v", err)
	}
	// No explicit prompt type in the result, so the task type carries over.
	if writing.PromptType != task.TaskType {
		t.Errorf("expected prompt type %q, got %q", task.TaskType, writing.PromptType)
	}
	if writing.Model != "gpt-4o" {
		t.Errorf("expected model recorded, got %q", writing.Model)
	}
	if writing.TaskID == nil || *writing.TaskID != task.ID {
		t.Errorf("expected task back-reference %d, got %v", task.ID, writing.TaskID)
	}
}

func TestProcessOneRunnerFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	task := enqueue(t, s)

	runner := &fakeRunner{err: errors.New("model unavailable")}
	w := New(s, runner, nil, 0)

	processed, err := w.ProcessOne(ctx)
	if err != nil {
		t.Fatalf("process one: %v", err)
	}
	if !processed {
		t.Fatal("expected the task to be consumed")
	}

	got, _ := s.GetTask(ctx, task.ID)
	if got.Status != model.StatusError {
		t.Errorf("expected error status, got %q", got.Status)
	}
	if got.Error != "model unavailable" {
		t.Errorf("expected error message recorded, got %q", got.Error)
	}
}

func TestProcessOneEmptyQueue(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	w := New(s, &fakeRunner{}, nil, 0)
	processed, err := w.ProcessOne(ctx)
	if err != nil {
		t.Fatalf("process one: %v", err)
	}
	if processed {
		t.Fatal("expected nothing to process")
	}
}
