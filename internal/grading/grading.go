// Package grading scores learner responses against an item's answer
// specification. Grading is pure: identical (item, response) pairs always
// produce identical results, so callers may re-grade freely.
package grading

import (
	"encoding/json"
	"errors"
	"fmt"

	"memora-backend/internal/models"
)

var (
	ErrUnsupportedItemType = errors.New("unsupported item type")
	ErrMalformedPayload    = errors.New("malformed answer spec")
	ErrMalformedResponse   = errors.New("malformed response")
)

// Grading is the outcome of scoring one response.
type Grading struct {
	Correct     bool    `json:"correct"`
	Score       float64 `json:"score"` // partial credit in [0, 1]
	Explanation string  `json:"explanation,omitempty"`
}

// Grade dispatches on the item type. The switch is exhaustive over the
// published type set; anything else is rejected so a new type cannot be
// silently scored as zero.
func Grade(item *models.Item, response json.RawMessage) (Grading, error) {
	switch item.Type {
	case models.ItemTypeFlashcard:
		return gradeFlashcard(item.PayloadJSON, response)
	case models.ItemTypeMCQ:
		return gradeMCQ(item.PayloadJSON, response)
	case models.ItemTypeCloze:
		return gradeCloze(item.PayloadJSON, response)
	case models.ItemTypeShort:
		return gradeShort(item.PayloadJSON, response)
	default:
		return Grading{}, fmt.Errorf("%w: %q", ErrUnsupportedItemType, item.Type)
	}
}
