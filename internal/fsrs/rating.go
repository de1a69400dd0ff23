package fsrs

import "fmt"

// Rating is the learner's assessment of recall quality, 1-4.
type Rating int

const (
	Again Rating = iota + 1 // Failed to recall.
	Hard                    // Recalled with significant difficulty.
	Good                    // Recalled with some effort.
	Easy                    // Recalled effortlessly.
)

var ratingNames = [...]string{Again: "again", Hard: "hard", Good: "good", Easy: "easy"}

// IsValid reports whether r is within the 1-4 rating scale.
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// Success reports whether r counts as a successful recall (Hard, Good, Easy).
func (r Rating) Success() bool {
	return r >= Hard && r <= Easy
}

// String returns the lowercase rating name, or "rating(n)" for invalid values.
func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("rating(%d)", int(r))
}
