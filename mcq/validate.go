package mcq

import (
	"fmt"
	"strings"
)

// Validate returns r unchanged when it satisfies the record invariants:
// positive question number, non-empty question text, four non-empty
// options and a correct answer in 1-4. Otherwise it returns a *Failure of
// kind InvalidRecord naming the first violated invariant.
func Validate(r Record) (Record, error) {
	if r.QuestionNumber < 1 {
		return Record{}, invalid(InvariantQuestionNumber, fmt.Sprintf("question number %d is not positive", r.QuestionNumber))
	}
	if strings.TrimSpace(r.QuestionText) == "" {
		return Record{}, invalid(InvariantQuestionText, "question text is empty")
	}
	for i, opt := range r.Options {
		if strings.TrimSpace(opt) == "" {
			return Record{}, invalid(InvariantOptionText, fmt.Sprintf("option %s is empty", labels[i]))
		}
	}
	if r.CorrectAnswer < 1 || r.CorrectAnswer > len(r.Options) {
		return Record{}, invalid(InvariantCorrectAnswer, fmt.Sprintf("correct answer %d is not in 1-4", r.CorrectAnswer))
	}
	return r, nil
}

func invalid(inv Invariant, detail string) *Failure {
	return &Failure{Kind: InvalidRecord, Invariant: inv, Detail: detail}
}
