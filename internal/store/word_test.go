package store

import (
	"context"
	"testing"
)

func TestCreateAndGetWord(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	w, err := s.CreateWord(ctx, "alpha")
	if err != nil {
		t.Fatalf("create word: %v", err)
	}
	if w.ID == 0 {
		t.Error("expected non-zero id")
	}
	if w.Word != "alpha" {
		t.Errorf("expected 'alpha', got %q", w.Word)
	}

	got, err := s.GetWord(ctx, w.ID)
	if err != nil {
		t.Fatalf("get word: %v", err)
	}
	if got.Word != "alpha" {
		t.Errorf("expected 'alpha', got %q", got.Word)
	}

	byText, err := s.GetWordByText(ctx, "alpha")
	if err != nil {
		t.Fatalf("get by text: %v", err)
	}
	if byText.ID != w.ID {
		t.Errorf("expected id %d, got %d", w.ID, byText.ID)
	}
}

func TestCreateWordDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.CreateWord(ctx, "alpha"); err != nil {
		t.Fatalf("create word: %v", err)
	}
	_, err := s.CreateWord(ctx, "alpha")
	if !IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestGetWordNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetWord(ctx, 999)
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestVersionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	w, _ := s.CreateWord(ctx, "alpha")

	v1, err := s.CreateVersion(ctx, w.ID, 1)
	if err != nil {
		t.Fatalf("create version: %v", err)
	}
	if v1.Version != 1 {
		t.Errorf("expected version 1, got %d", v1.Version)
	}

	// Same number again is a conflict.
	if _, err := s.CreateVersion(ctx, w.ID, 1); !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Missing word.
	if _, err := s.CreateVersion(ctx, 999, 1); !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}

	v2, err := s.NextVersion(ctx, w.ID)
	if err != nil {
		t.Fatalf("next version: %v", err)
	}
	if v2.Version != 2 {
		t.Errorf("expected version 2, got %d", v2.Version)
	}

	versions, err := s.ListVersions(ctx, w.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions))
	}
	if versions[0].Version != 2 {
		t.Errorf("expected newest first, got version %d", versions[0].Version)
	}
}

func TestEnsureVersion(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	w, _ := s.CreateWord(ctx, "alpha")

	v, err := s.EnsureVersion(ctx, w.ID)
	if err != nil {
		t.Fatalf("ensure version: %v", err)
	}
	if v.Version != 1 {
		t.Errorf("expected version 1, got %d", v.Version)
	}

	// Second call returns the existing version, not a new one.
	again, err := s.EnsureVersion(ctx, w.ID)
	if err != nil {
		t.Fatalf("ensure version again: %v", err)
	}
	if again.ID != v.ID {
		t.Errorf("expected same version id %d, got %d", v.ID, again.ID)
	}
}

func TestListWordsLatestVersion(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	w, _ := s.CreateWord(ctx, "alpha")
	s.CreateVersion(ctx, w.ID, 1)
	v2, _ := s.NextVersion(ctx, w.ID)
	s.CreateWord(ctx, "bare") // no versions

	words, err := s.ListWords(ctx)
	if err != nil {
		t.Fatalf("list words: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[0].Word != "alpha" {
		t.Fatalf("expected alpha first, got %q", words[0].Word)
	}
	if words[0].LatestVersionID == nil || *words[0].LatestVersionID != v2.ID {
		t.Errorf("expected latest version id %d, got %v", v2.ID, words[0].LatestVersionID)
	}
	if words[1].LatestVersionID != nil {
		t.Error("expected no latest version for bare word")
	}
}

func TestDeleteWordCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	parent, _ := s.CreateWord(ctx, "parent")
	pv, _ := s.CreateVersion(ctx, parent.ID, 1)
	child, _ := s.CreateWord(ctx, "child")
	s.CreateVersion(ctx, child.ID, 1)

	cw, _ := s.AddChildWord(ctx, pv.ID, "orbiting", "")
	s.AddEdge(ctx, pv.ID, child.ID)
	task, _ := s.Enqueue(ctx, EnqueueParams{WordID: parent.ID, TaskType: "create_lang_words"})
	wr, _ := s.RecordWriting(ctx, RecordWritingParams{
		WordID: parent.ID, PromptType: "create_lang_words", Text: []byte(`{}`),
	})

	if err := s.DeleteWord(ctx, parent.ID); err != nil {
		t.Fatalf("delete word: %v", err)
	}

	if _, err := s.GetWord(ctx, parent.ID); !IsNotFound(err) {
		t.Errorf("expected word gone, got %v", err)
	}
	if _, err := s.GetChildWord(ctx, cw.ID); !IsNotFound(err) {
		t.Errorf("expected child word gone, got %v", err)
	}
	if _, err := s.GetTask(ctx, task.ID); !IsNotFound(err) {
		t.Errorf("expected task gone, got %v", err)
	}
	if _, err := s.GetWriting(ctx, wr.ID); !IsNotFound(err) {
		t.Errorf("expected writing gone, got %v", err)
	}

	// The linked word itself survives; only the edge goes.
	if _, err := s.GetWord(ctx, child.ID); err != nil {
		t.Errorf("expected child lang word to survive, got %v", err)
	}
}

func TestDeleteVersionCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	w, _ := s.CreateWord(ctx, "alpha")
	v1, _ := s.CreateVersion(ctx, w.ID, 1)
	v2, _ := s.NextVersion(ctx, w.ID)

	cw, _ := s.AddChildWord(ctx, v1.ID, "orbiting", "")

	if err := s.DeleteVersion(ctx, v1.ID); err != nil {
		t.Fatalf("delete version: %v", err)
	}
	if _, err := s.GetChildWord(ctx, cw.ID); !IsNotFound(err) {
		t.Errorf("expected child word gone, got %v", err)
	}

	versions, _ := s.ListVersions(ctx, w.ID)
	if len(versions) != 1 || versions[0].ID != v2.ID {
		t.Errorf("expected only version %d to remain, got %v", v2.ID, versions)
	}
}
