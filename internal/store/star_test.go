package store

import (
	"context"
	"testing"
)

func TestLangLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	l, err := s.CreateLang(ctx, "etymology notes")
	if err != nil {
		t.Fatalf("create lang: %v", err)
	}

	got, err := s.GetLang(ctx, l.ID)
	if err != nil {
		t.Fatalf("get lang: %v", err)
	}
	if got.Text != "etymology notes" {
		t.Errorf("expected text back, got %q", got.Text)
	}

	langs, err := s.ListLangs(ctx)
	if err != nil {
		t.Fatalf("list langs: %v", err)
	}
	if len(langs) != 1 {
		t.Fatalf("expected 1 lang, got %d", len(langs))
	}
}

func TestCreateStarNodeSameLangOnly(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	l1, _ := s.CreateLang(ctx, "first")
	l2, _ := s.CreateLang(ctx, "second")

	root, err := s.CreateStarNode(ctx, l1.ID, nil, "section")
	if err != nil {
		t.Fatalf("create root: %v", err)
	}

	// Parent in another lang is rejected.
	if _, err := s.CreateStarNode(ctx, l2.ID, &root.ID, "section"); err == nil {
		t.Fatal("expected error for cross-lang parent")
	}

	// Parent in the same lang works.
	child, err := s.CreateStarNode(ctx, l1.ID, &root.ID, "paragraph")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if child.ParentStarID == nil || *child.ParentStarID != root.ID {
		t.Errorf("expected parent %d, got %v", root.ID, child.ParentStarID)
	}

	// Missing parent and missing lang are not-found.
	missing := int64(999)
	if _, err := s.CreateStarNode(ctx, l1.ID, &missing, "x"); !IsNotFound(err) {
		t.Errorf("expected not-found for missing parent, got %v", err)
	}
	if _, err := s.CreateStarNode(ctx, 999, nil, "x"); !IsNotFound(err) {
		t.Errorf("expected not-found for missing lang, got %v", err)
	}
}

func TestDeleteStarNodeSubtree(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	l, _ := s.CreateLang(ctx, "notes")
	root, _ := s.CreateStarNode(ctx, l.ID, nil, "root")
	mid, _ := s.CreateStarNode(ctx, l.ID, &root.ID, "mid")
	leaf, _ := s.CreateStarNode(ctx, l.ID, &mid.ID, "leaf")
	sibling, _ := s.CreateStarNode(ctx, l.ID, &root.ID, "sibling")

	txt, _ := s.AddStarText(ctx, leaf.ID, "deep note")

	if err := s.DeleteStarNode(ctx, mid.ID); err != nil {
		t.Fatalf("delete star node: %v", err)
	}

	if _, err := s.GetStarNode(ctx, mid.ID); !IsNotFound(err) {
		t.Errorf("expected mid gone, got %v", err)
	}
	if _, err := s.GetStarNode(ctx, leaf.ID); !IsNotFound(err) {
		t.Errorf("expected leaf gone, got %v", err)
	}
	if err := s.DeleteStarText(ctx, txt.ID); !IsNotFound(err) {
		t.Errorf("expected leaf text gone, got %v", err)
	}

	// The rest of the tree survives.
	if _, err := s.GetStarNode(ctx, root.ID); err != nil {
		t.Errorf("expected root to survive, got %v", err)
	}
	if _, err := s.GetStarNode(ctx, sibling.ID); err != nil {
		t.Errorf("expected sibling to survive, got %v", err)
	}
}

func TestMoveStarNodeGuards(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	l, _ := s.CreateLang(ctx, "notes")
	other, _ := s.CreateLang(ctx, "other")
	root, _ := s.CreateStarNode(ctx, l.ID, nil, "root")
	mid, _ := s.CreateStarNode(ctx, l.ID, &root.ID, "mid")
	leaf, _ := s.CreateStarNode(ctx, l.ID, &mid.ID, "leaf")
	foreign, _ := s.CreateStarNode(ctx, other.ID, nil, "foreign")

	// Under itself.
	if err := s.MoveStarNode(ctx, mid.ID, &mid.ID); err == nil {
		t.Error("expected error moving node under itself")
	}
	// Into its own subtree.
	if err := s.MoveStarNode(ctx, mid.ID, &leaf.ID); err == nil {
		t.Error("expected error moving node into its own subtree")
	}
	// Across langs.
	if err := s.MoveStarNode(ctx, mid.ID, &foreign.ID); err == nil {
		t.Error("expected error moving node under another lang")
	}

	// Promote leaf to root.
	if err := s.MoveStarNode(ctx, leaf.ID, nil); err != nil {
		t.Fatalf("move to root: %v", err)
	}
	got, _ := s.GetStarNode(ctx, leaf.ID)
	if got.ParentStarID != nil {
		t.Errorf("expected nil parent after promotion, got %v", got.ParentStarID)
	}
}

func TestStarTreeAndFlatten(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	l, _ := s.CreateLang(ctx, "notes")
	root, _ := s.CreateStarNode(ctx, l.ID, nil, "chapter")
	child, _ := s.CreateStarNode(ctx, l.ID, &root.ID, "section")
	s.AddStarText(ctx, child.ID, "first note")
	s.AddStarText(ctx, child.ID, "second note")

	roots, err := s.StarTree(ctx, l.ID)
	if err != nil {
		t.Fatalf("star tree: %v", err)
	}
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	if len(roots[0].Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(roots[0].Children))
	}
	if len(roots[0].Children[0].Texts) != 2 {
		t.Errorf("expected 2 texts on child, got %d", len(roots[0].Children[0].Texts))
	}

	rows, err := s.FlattenStars(ctx, l.ID)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1].Path != "chapter > section" {
		t.Errorf("expected path 'chapter > section', got %q", rows[1].Path)
	}
}

func TestDeleteLangCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	l, _ := s.CreateLang(ctx, "notes")
	root, _ := s.CreateStarNode(ctx, l.ID, nil, "root")
	s.AddStarText(ctx, root.ID, "note")

	if err := s.DeleteLang(ctx, l.ID); err != nil {
		t.Fatalf("delete lang: %v", err)
	}
	if _, err := s.GetLang(ctx, l.ID); !IsNotFound(err) {
		t.Errorf("expected lang gone, got %v", err)
	}
	if _, err := s.GetStarNode(ctx, root.ID); !IsNotFound(err) {
		t.Errorf("expected node gone, got %v", err)
	}
}
