package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ItemType enumerates the supported practice item kinds. The set is closed:
// every grader and renderer switches exhaustively over these values.
type ItemType string

const (
	ItemTypeFlashcard ItemType = "flashcard"
	ItemTypeMCQ       ItemType = "mcq"
	ItemTypeCloze     ItemType = "cloze"
	ItemTypeShort     ItemType = "short"
)

// IsValid reports whether t is one of the four supported item types.
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeFlashcard, ItemTypeMCQ, ItemTypeCloze, ItemTypeShort:
		return true
	}
	return false
}

// Item is one published practice item. Items are authored and imported by an
// external system; this service only ever reads them.
type Item struct {
	ID          uuid.UUID       `json:"id"`
	Type        ItemType        `json:"type"`
	Prompt      string          `json:"prompt"`
	PayloadJSON json.RawMessage `json:"payload"` // type-specific answer spec
	Status      string          `json:"status"`  // only "published" items reach the core
	CreatedAt   time.Time       `json:"created_at"`
}
