package grading

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type mcqOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type mcqSpec struct {
	Options      []mcqOption `json:"options"`
	Correct      []string    `json:"correct"` // option IDs
	AllowPartial bool        `json:"allow_partial"`
}

type mcqResponse struct {
	SelectedOptions []string `json:"selected_options"`
}

// gradeMCQ compares the selected-option set against the correct set.
// Correct only on exact set equality. When the item allows partial
// credit, a wrong selection scores |selected ∩ correct| / |correct|.
func gradeMCQ(payload, response json.RawMessage) (Grading, error) {
	var spec mcqSpec
	if err := json.Unmarshal(payload, &spec); err != nil {
		return Grading{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(spec.Correct) == 0 {
		return Grading{}, fmt.Errorf("%w: mcq item has no correct options", ErrMalformedPayload)
	}
	var resp mcqResponse
	if err := json.Unmarshal(response, &resp); err != nil {
		return Grading{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	correct := make(map[string]bool, len(spec.Correct))
	for _, id := range spec.Correct {
		correct[id] = true
	}
	selected := make(map[string]bool, len(resp.SelectedOptions))
	for _, id := range resp.SelectedOptions {
		selected[id] = true
	}

	overlap := 0
	for id := range selected {
		if correct[id] {
			overlap++
		}
	}
	exact := len(selected) == len(correct) && overlap == len(correct)
	if exact {
		return Grading{Correct: true, Score: 1.0}, nil
	}

	score := 0.0
	if spec.AllowPartial {
		score = float64(overlap) / float64(len(correct))
	}
	return Grading{
		Correct:     false,
		Score:       score,
		Explanation: fmt.Sprintf("correct options: %s", joinSorted(spec.Correct)),
	}, nil
}

func joinSorted(ids []string) string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	return strings.Join(out, ", ")
}
