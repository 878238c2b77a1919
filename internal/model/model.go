// Package model defines the core word-graph data types.
package model

import "encoding/json"

// Word is a canonical vocabulary entry. Its text is unique and immutable;
// graph state accumulates on versions, not on the word itself.
type Word struct {
	ID        int64  `json:"id"`
	Word      string `json:"word"`
	CreatedAt string `json:"created_at"`
}

// WordVersion is one snapshot of a word's expansion state. Version numbers
// are unique per word.
type WordVersion struct {
	ID        int64  `json:"id"`
	WordID    int64  `json:"lang_word_id"`
	Version   int    `json:"version"`
	CreatedAt string `json:"created_at"`
}

// ChildWord is a free-text orbiting phrase attached to one version. It is a
// leaf, not a graph node with further children.
type ChildWord struct {
	ID        int64  `json:"id"`
	VersionID int64  `json:"lang_word_version_id"`
	Word      string `json:"word"`
	Link      string `json:"link,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Edge links a parent version to a child word, forming the structural
// graph. At most one edge exists per (version, word) pair.
type Edge struct {
	ID              int64  `json:"id"`
	ParentVersionID int64  `json:"parent_lang_word_version_id"`
	ChildWordID     int64  `json:"child_lang_word_id"`
	CreatedAt       string `json:"created_at"`
}

// Sentence composes words by id. The id list is stored by value and is not
// checked against lang_words; callers own referential integrity.
type Sentence struct {
	ID        int64   `json:"id"`
	WordIDs   []int64 `json:"lang_word_ids"`
	Sentence  string  `json:"sentence"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// ChildSentence composes child words under a sentence. Same by-value id
// semantics as Sentence.
type ChildSentence struct {
	ID           int64   `json:"id"`
	SentenceID   int64   `json:"lang_sentence_id"`
	ChildWordIDs []int64 `json:"child_word_ids"`
	Sentence     string  `json:"sentence"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// Task statuses. Lifecycle is queued -> running -> done|error.
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusError   = "error"
)

// ValidStatuses are the allowed task statuses.
var ValidStatuses = map[string]bool{
	StatusQueued:  true,
	StatusRunning: true,
	StatusDone:    true,
	StatusError:   true,
}

// Task is a unit of asynchronous expansion work tied to a word. Identifier
// and payload are opaque JSON; the store never interprets them.
type Task struct {
	ID              int64           `json:"id"`
	ParentWordID    int64           `json:"parent_lang_word_id"`
	TaskType        string          `json:"task_type"`
	Identifier      json.RawMessage `json:"identifier"`
	Payload         json.RawMessage `json:"payload"`
	Status          string          `json:"status"`
	Error           string          `json:"error,omitempty"`
	ResultWritingID *int64          `json:"result_writing_id,omitempty"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

// Writing is raw staged output from an external generation step, kept for
// audit and replay until explicitly applied.
type Writing struct {
	ID           int64           `json:"id"`
	ParentWordID int64           `json:"parent_lang_word_id"`
	Identifier   json.RawMessage `json:"identifier"`
	PromptType   string          `json:"prompt_type"`
	Text         json.RawMessage `json:"text"`
	Model        string          `json:"model,omitempty"`
	Modifier     string          `json:"modifier,omitempty"`
	TaskID       *int64          `json:"task_id,omitempty"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

// Lang is the root of an annotation tree, unrelated to the word graph.
type Lang struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// StarNode is a node in a lang's annotation tree. A nil parent means root.
// Every node's parent belongs to the same lang.
type StarNode struct {
	ID           int64  `json:"id"`
	LangID       int64  `json:"lang_id"`
	ParentStarID *int64 `json:"parent_star_id,omitempty"`
	Type         string `json:"type"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// StarText is one free-text entry attached to a star node.
type StarText struct {
	ID        int64  `json:"id"`
	StarID    int64  `json:"star_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// PromptTypeCreateLangWords names the writing shape ApplyWriting consumes.
const PromptTypeCreateLangWords = "create_lang_words"

// ThemePlan is the parsed shape of a create_lang_words writing.
type ThemePlan struct {
	Themes []Theme `json:"themes"`
}

// Theme is one generated theme with its orbiting phrases.
type Theme struct {
	Theme           string   `json:"theme"`
	OrbitingPhrases []string `json:"orbiting_phrases"`
}
