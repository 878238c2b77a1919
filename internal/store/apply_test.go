package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/b0risfosso/lang/internal/model"
)

func TestApplyWriting(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	parent, _ := s.CreateWord(ctx, "ocean")
	s.CreateVersion(ctx, parent.ID, 1)

	plan := model.ThemePlan{Themes: []model.Theme{
		{Theme: "tides", OrbitingPhrases: []string{"ebb and flow", "spring tide"}},
		{Theme: "depths", OrbitingPhrases: []string{"abyssal plain"}},
	}}
	text, _ := json.Marshal(plan)

	wr, err := s.RecordWriting(ctx, RecordWritingParams{
		WordID:     parent.ID,
		PromptType: model.PromptTypeCreateLangWords,
		Text:       text,
	})
	if err != nil {
		t.Fatalf("record writing: %v", err)
	}

	result, err := s.ApplyWriting(ctx, wr.ID)
	if err != nil {
		t.Fatalf("apply writing: %v", err)
	}
	if result.ParentWordID != parent.ID {
		t.Errorf("expected parent %d, got %d", parent.ID, result.ParentWordID)
	}
	if len(result.Created) != 2 {
		t.Fatalf("expected 2 created themes, got %d", len(result.Created))
	}

	// The parent got a fresh version carrying edges to both theme words.
	versions, _ := s.ListVersions(ctx, parent.ID)
	if len(versions) != 2 {
		t.Fatalf("expected 2 parent versions, got %d", len(versions))
	}
	vc, err := s.ListChildren(ctx, result.ParentVersionID)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(vc.ChildLangs) != 2 {
		t.Fatalf("expected 2 linked theme words, got %v", vc.ChildLangs)
	}

	// Each theme word carries its orbiting phrases on the created version.
	tides, err := s.GetWordByText(ctx, "tides")
	if err != nil {
		t.Fatalf("get theme word: %v", err)
	}
	var tidesVersion int64
	for _, c := range result.Created {
		if c.WordID == tides.ID {
			tidesVersion = c.VersionID
		}
	}
	tc, _ := s.ListChildren(ctx, tidesVersion)
	if len(tc.ChildWords) != 2 {
		t.Fatalf("expected 2 orbiting phrases under tides, got %v", tc.ChildWords)
	}

	// The consumed writing is gone.
	if _, err := s.GetWriting(ctx, wr.ID); !IsNotFound(err) {
		t.Errorf("expected writing consumed, got %v", err)
	}
}

// Applying a plan that names an existing word reuses it with a new version
// instead of failing on the unique text.
func TestApplyWritingReusesExistingWord(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	parent, _ := s.CreateWord(ctx, "ocean")
	s.CreateVersion(ctx, parent.ID, 1)
	existing, _ := s.CreateWord(ctx, "tides")
	s.CreateVersion(ctx, existing.ID, 1)

	text, _ := json.Marshal(model.ThemePlan{Themes: []model.Theme{
		{Theme: "tides", OrbitingPhrases: []string{"neap tide"}},
	}})
	wr, _ := s.RecordWriting(ctx, RecordWritingParams{
		WordID: parent.ID, PromptType: model.PromptTypeCreateLangWords, Text: text,
	})

	result, err := s.ApplyWriting(ctx, wr.ID)
	if err != nil {
		t.Fatalf("apply writing: %v", err)
	}
	if len(result.Created) != 1 || result.Created[0].WordID != existing.ID {
		t.Fatalf("expected reuse of word %d, got %v", existing.ID, result.Created)
	}

	versions, _ := s.ListVersions(ctx, existing.ID)
	if len(versions) != 2 {
		t.Fatalf("expected a fresh version on the reused word, got %d", len(versions))
	}
}

func TestApplyWritingWrongPromptType(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	parent, _ := s.CreateWord(ctx, "ocean")
	wr, _ := s.RecordWriting(ctx, RecordWritingParams{
		WordID: parent.ID, PromptType: "summarize", Text: json.RawMessage(`"free text"`),
	})

	if _, err := s.ApplyWriting(ctx, wr.ID); err == nil {
		t.Fatal("expected error for wrong prompt type")
	}
	// Not consumed on failure.
	if _, err := s.GetWriting(ctx, wr.ID); err != nil {
		t.Errorf("expected writing to survive a failed apply, got %v", err)
	}
}

func TestApplyWritingInvalidPlan(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	parent, _ := s.CreateWord(ctx, "ocean")
	wr, _ := s.RecordWriting(ctx, RecordWritingParams{
		WordID: parent.ID, PromptType: model.PromptTypeCreateLangWords,
		Text: json.RawMessage(`"not a plan"`),
	})

	if _, err := s.ApplyWriting(ctx, wr.ID); err == nil {
		t.Fatal("expected error for malformed theme plan")
	}
}
