package grading

import "strings"

// normalize folds case and collapses runs of whitespace so cosmetic
// differences never affect equality grading.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func matchesAny(answer string, accepted []string) bool {
	got := normalize(answer)
	for _, want := range accepted {
		if got == normalize(want) {
			return true
		}
	}
	return false
}
