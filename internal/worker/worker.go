// Package worker drains the task queue. It claims queued tasks, hands them
// to a Runner, stages the result as a temporary writing, and records final
// disposition. The generation call itself (typically an LLM) lives behind
// the Runner interface, outside any transaction.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/b0risfosso/lang/internal/model"
	"github.com/b0risfosso/lang/internal/store"
)

// Result is what a Runner produces for one task.
type Result struct {
	PromptType string          `json:"prompt_type,omitempty"`
	Text       json.RawMessage `json:"text"`
	Model      string          `json:"model,omitempty"`
	Modifier   string          `json:"modifier,omitempty"`
}

// Runner executes one claimed task. A returned error fails the task with
// the error's message; retry is the operator's decision.
type Runner interface {
	Run(ctx context.Context, task *model.Task) (*Result, error)
}

// Worker polls the queue and processes tasks one at a time.
type Worker struct {
	store    *store.SQLiteStore
	runner   Runner
	log      *zap.Logger
	id       string
	interval time.Duration
}

// New creates a worker with a fresh ULID identity.
func New(s *store.SQLiteStore, r Runner, log *zap.Logger, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
	return &Worker{
		store:    s,
		runner:   r,
		log:      log.With(zap.String("worker_id", id)),
		id:       id,
		interval: interval,
	}
}

// ID returns the worker's ULID identity.
func (w *Worker) ID() string {
	return w.id
}

// Run polls until ctx is cancelled. An empty queue sleeps for the poll
// interval; processing errors are logged and polling continues.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("worker started", zap.Duration("interval", w.interval))
	for {
		processed, err := w.ProcessOne(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.log.Info("worker stopped")
				return ctx.Err()
			}
			w.log.Error("process task", zap.Error(err))
		}
		if processed {
			continue
		}
		select {
		case <-ctx.Done():
			w.log.Info("worker stopped")
			return ctx.Err()
		case <-time.After(w.interval):
		}
	}
}

// ProcessOne claims and runs a single task. It reports false when the
// queue was empty. A Runner failure marks the task as error and is not
// returned: the disposition is recorded, which is the worker's job.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	task, err := w.store.ClaimNext(ctx)
	if err != nil {
		return false, fmt.Errorf("claim next: %w", err)
	}
	if task == nil {
		return false, nil
	}

	log := w.log.With(zap.Int64("task_id", task.ID), zap.String("task_type", task.TaskType))
	log.Info("task claimed", zap.Int64("parent_lang_word_id", task.ParentWordID))

	result, err := w.runner.Run(ctx, task)
	if err != nil {
		log.Warn("runner failed", zap.Error(err))
		if failErr := w.store.Fail(ctx, task.ID, err.Error()); failErr != nil {
			return true, fmt.Errorf("fail task %d: %w", task.ID, failErr)
		}
		return true, nil
	}

	promptType := result.PromptType
	if promptType == "" {
		promptType = task.TaskType
	}

	writing, err := w.store.RecordWriting(ctx, store.RecordWritingParams{
		WordID:     task.ParentWordID,
		Identifier: task.Identifier,
		PromptType: promptType,
		Text:       result.Text,
		Model:      result.Model,
		Modifier:   result.Modifier,
		TaskID:     task.ID,
	})
	if err != nil {
		if failErr := w.store.Fail(ctx, task.ID, err.Error()); failErr != nil {
			return true, fmt.Errorf("fail task %d: %w", task.ID, failErr)
		}
		return true, nil
	}

	if err := w.store.Complete(ctx, task.ID, writing.ID); err != nil {
		return true, fmt.Errorf("complete task %d: %w", task.ID, err)
	}

	log.Info("task done", zap.Int64("writing_id", writing.ID))
	return true, nil
}
