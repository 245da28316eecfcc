package mcq

import "strings"

var labels = [4]string{"A", "B", "C", "D"}

// AnswerPosition maps an option letter (case-insensitive) to its position
// A→1, B→2, C→3, D→4. Any other input reports false; there is no default.
func AnswerPosition(letter string) (int, bool) {
	switch strings.ToUpper(strings.TrimSpace(letter)) {
	case "A":
		return 1, true
	case "B":
		return 2, true
	case "C":
		return 3, true
	case "D":
		return 4, true
	}
	return 0, false
}

// Label returns the option letter for position 1-4, or "" out of range.
func Label(pos int) string {
	if pos < 1 || pos > len(labels) {
		return ""
	}
	return labels[pos-1]
}
