package mcq

import (
	"errors"
	"fmt"
)

// FailureKind tags why a question was dropped.
type FailureKind string

const (
	AnswerNotFound    FailureKind = "AnswerNotFound"
	IncompleteOptions FailureKind = "IncompleteOptions"
	EmptyQuestion     FailureKind = "EmptyQuestion"
	InvalidRecord     FailureKind = "InvalidRecord"
)

// Kinds lists every failure kind in report order.
var Kinds = []FailureKind{AnswerNotFound, IncompleteOptions, EmptyQuestion, InvalidRecord}

// Invariant names the record invariant an InvalidRecord failure violated.
type Invariant string

const (
	InvariantQuestionNumber Invariant = "question_number_positive"
	InvariantQuestionText   Invariant = "question_text_non_empty"
	InvariantOptionText     Invariant = "option_text_non_empty"
	InvariantCorrectAnswer  Invariant = "correct_answer_in_range"
)

// Failure is the per-question error of both strategies. Unit is the
// 1-based block index (primary) or source line number (fallback) where the
// question started; Token is its numbering marker as written.
type Failure struct {
	Kind      FailureKind `json:"kind"`
	Unit      int         `json:"unit"`
	Token     string      `json:"token,omitempty"`
	Invariant Invariant   `json:"invariant,omitempty"`
	Detail    string      `json:"detail"`
}

func (f *Failure) Error() string {
	if f.Token != "" {
		return fmt.Sprintf("%s %s: %s", f.Kind, f.Token, f.Detail)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// Report aggregates the questions dropped during one strategy run.
type Report struct {
	Counts   map[FailureKind]int `json:"counts"`
	Failures []Failure           `json:"failures"`
}

func newReport() Report {
	counts := make(map[FailureKind]int, len(Kinds))
	for _, k := range Kinds {
		counts[k] = 0
	}
	return Report{Counts: counts, Failures: []Failure{}}
}

// add records err against unit. Errors that are not a *Failure are
// reported as InvalidRecord so nothing is lost.
func (r *Report) add(unit int, token string, err error) {
	var f *Failure
	if !errors.As(err, &f) {
		f = &Failure{Kind: InvalidRecord, Detail: err.Error()}
	}
	entry := *f
	if entry.Unit == 0 {
		entry.Unit = unit
	}
	if entry.Token == "" {
		entry.Token = token
	}
	if r.Counts == nil {
		*r = newReport()
	}
	r.Counts[entry.Kind]++
	r.Failures = append(r.Failures, entry)
}

// Count returns the number of failures of kind k.
func (r Report) Count(k FailureKind) int {
	return r.Counts[k]
}

// Total returns the number of dropped questions.
func (r Report) Total() int {
	return len(r.Failures)
}
