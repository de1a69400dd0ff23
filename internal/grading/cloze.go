package grading

import (
	"encoding/json"
	"fmt"
	"strings"
)

type clozeBlank struct {
	ID      string   `json:"id"`
	Answers []string `json:"answers"`
}

type clozeSpec struct {
	Text   string       `json:"text"`
	Blanks []clozeBlank `json:"blanks"`
}

// gradeCloze grades every blank independently against its own accepted
// list. Partial credit is the fraction of blanks answered correctly;
// a missing blank in the response simply scores that blank as wrong.
func gradeCloze(payload, response json.RawMessage) (Grading, error) {
	var spec clozeSpec
	if err := json.Unmarshal(payload, &spec); err != nil {
		return Grading{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(spec.Blanks) == 0 {
		return Grading{}, fmt.Errorf("%w: cloze item has no blanks", ErrMalformedPayload)
	}
	var answers map[string]string
	if err := json.Unmarshal(response, &answers); err != nil {
		return Grading{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	correctCount := 0
	var missed []string
	for _, blank := range spec.Blanks {
		if matchesAny(answers[blank.ID], blank.Answers) {
			correctCount++
		} else {
			missed = append(missed, blank.ID)
		}
	}

	score := float64(correctCount) / float64(len(spec.Blanks))
	g := Grading{Correct: correctCount == len(spec.Blanks), Score: score}
	if !g.Correct {
		g.Explanation = fmt.Sprintf("incorrect blanks: %s", strings.Join(missed, ", "))
	}
	return g, nil
}
