package grading

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

type shortSpec struct {
	Expected string `json:"expected"`
	Pattern  string `json:"pattern"` // disjunction of acceptable phrasings
}

type shortResponse struct {
	Answer string `json:"answer"`
}

// gradeShort matches the trimmed response against the item's pattern,
// case-insensitively and anchored to the full string. The pattern already
// enumerates every acceptable phrasing, so a match is full acceptance and
// there is no partial credit. Items without a pattern fall back to
// normalized equality with the expected text.
func gradeShort(payload, response json.RawMessage) (Grading, error) {
	var spec shortSpec
	if err := json.Unmarshal(payload, &spec); err != nil {
		return Grading{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	var resp shortResponse
	if err := json.Unmarshal(response, &resp); err != nil {
		return Grading{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	answer := strings.TrimSpace(resp.Answer)
	var matched bool
	if spec.Pattern != "" {
		re, err := regexp.Compile("(?i)^(?:" + spec.Pattern + ")$")
		if err != nil {
			return Grading{}, fmt.Errorf("%w: bad pattern: %v", ErrMalformedPayload, err)
		}
		matched = re.MatchString(answer)
	} else {
		matched = matchesAny(answer, []string{spec.Expected})
	}

	if matched {
		return Grading{Correct: true, Score: 1.0}, nil
	}
	return Grading{
		Correct:     false,
		Score:       0.0,
		Explanation: fmt.Sprintf("expected %q", spec.Expected),
	}, nil
}
