package grading

import (
	"encoding/json"
	"fmt"
)

type flashcardSpec struct {
	Front        string   `json:"front"`
	Back         string   `json:"back"`
	Alternatives []string `json:"alternatives"`
}

type flashcardResponse struct {
	Answer string `json:"answer"`
}

// gradeFlashcard checks normalized equality against the back of the card
// or any listed alternative. Binary: no partial credit.
func gradeFlashcard(payload, response json.RawMessage) (Grading, error) {
	var spec flashcardSpec
	if err := json.Unmarshal(payload, &spec); err != nil {
		return Grading{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	var resp flashcardResponse
	if err := json.Unmarshal(response, &resp); err != nil {
		return Grading{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	accepted := append([]string{spec.Back}, spec.Alternatives...)
	if matchesAny(resp.Answer, accepted) {
		return Grading{Correct: true, Score: 1.0}, nil
	}
	return Grading{
		Correct:     false,
		Score:       0.0,
		Explanation: fmt.Sprintf("expected %q", spec.Back),
	}, nil
}
