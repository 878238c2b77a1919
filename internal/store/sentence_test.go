package store

import (
	"context"
	"testing"
)

func TestCreateAndGetSentence(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sent, err := s.CreateSentence(ctx, []int64{1, 2, 3}, "a composed sentence")
	if err != nil {
		t.Fatalf("create sentence: %v", err)
	}

	got, err := s.GetSentence(ctx, sent.ID)
	if err != nil {
		t.Fatalf("get sentence: %v", err)
	}
	if got.Sentence != "a composed sentence" {
		t.Errorf("expected text back, got %q", got.Sentence)
	}
	if len(got.WordIDs) != 3 || got.WordIDs[0] != 1 || got.WordIDs[2] != 3 {
		t.Errorf("expected word ids [1 2 3] in order, got %v", got.WordIDs)
	}
}

// Word ids are stored by value and never checked against lang_words.
func TestCreateSentenceUnknownWordIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sent, err := s.CreateSentence(ctx, []int64{999}, "dangling reference")
	if err != nil {
		t.Fatalf("expected unknown word ids to be accepted, got %v", err)
	}
	if len(sent.WordIDs) != 1 || sent.WordIDs[0] != 999 {
		t.Errorf("expected word ids [999], got %v", sent.WordIDs)
	}
}

func TestCreateSentenceValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.CreateSentence(ctx, []int64{1}, "  "); err == nil {
		t.Error("expected error for empty text")
	}
	if _, err := s.CreateSentence(ctx, nil, "text"); err == nil {
		t.Error("expected error for empty word ids")
	}
}

func TestChildSentences(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sent, _ := s.CreateSentence(ctx, []int64{1}, "parent sentence")

	cs, err := s.CreateChildSentence(ctx, sent.ID, []int64{10, 20}, "child sentence")
	if err != nil {
		t.Fatalf("create child sentence: %v", err)
	}
	if cs.SentenceID != sent.ID {
		t.Errorf("expected sentence id %d, got %d", sent.ID, cs.SentenceID)
	}

	// Parent must exist, unlike the word ids.
	if _, err := s.CreateChildSentence(ctx, 999, []int64{1}, "orphan"); !IsNotFound(err) {
		t.Fatalf("expected not-found for missing parent, got %v", err)
	}

	children, err := s.ListChildSentences(ctx, sent.ID)
	if err != nil {
		t.Fatalf("list child sentences: %v", err)
	}
	if len(children) != 1 {
		t.Fatalf("expected 1 child sentence, got %d", len(children))
	}
}

func TestDeleteSentenceCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sent, _ := s.CreateSentence(ctx, []int64{1}, "parent")
	cs, _ := s.CreateChildSentence(ctx, sent.ID, []int64{2}, "child")

	if err := s.DeleteSentence(ctx, sent.ID); err != nil {
		t.Fatalf("delete sentence: %v", err)
	}
	if _, err := s.GetSentence(ctx, sent.ID); !IsNotFound(err) {
		t.Errorf("expected sentence gone, got %v", err)
	}
	if _, err := s.GetChildSentence(ctx, cs.ID); !IsNotFound(err) {
		t.Errorf("expected child sentence gone, got %v", err)
	}
}
