package mcq

import (
	"errors"
	"testing"
)

func validRecord() Record {
	return Record{
		Topic:          "t",
		QuestionNumber: 1,
		QuestionText:   "q",
		Options:        [4]string{"a", "b", "c", "d"},
		CorrectAnswer:  1,
	}
}

func TestValidate_OK(t *testing.T) {
	r := validRecord()
	r.Options = [4]string{"same", "same", "same", "same"}
	got, err := Validate(r)
	if err != nil {
		t.Fatalf("duplicate option text must be allowed: %v", err)
	}
	if got != r {
		t.Fatal("Validate must return the record unchanged")
	}
}

func TestValidate_Invariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Record)
		want   Invariant
	}{
		{"zero number", func(r *Record) { r.QuestionNumber = 0 }, InvariantQuestionNumber},
		{"negative number", func(r *Record) { r.QuestionNumber = -3 }, InvariantQuestionNumber},
		{"blank question", func(r *Record) { r.QuestionText = "   " }, InvariantQuestionText},
		{"empty option C", func(r *Record) { r.Options[2] = "" }, InvariantOptionText},
		{"answer zero", func(r *Record) { r.CorrectAnswer = 0 }, InvariantCorrectAnswer},
		{"answer five", func(r *Record) { r.CorrectAnswer = 5 }, InvariantCorrectAnswer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)
			_, err := Validate(r)
			var f *Failure
			if !errors.As(err, &f) {
				t.Fatalf("error: got %v, want *Failure", err)
			}
			if f.Kind != InvalidRecord || f.Invariant != tt.want {
				t.Fatalf("got %s/%s, want InvalidRecord/%s", f.Kind, f.Invariant, tt.want)
			}
		})
	}
}

func TestAnswerPosition(t *testing.T) {
	for letter, want := range map[string]int{"A": 1, "b": 2, " C ": 3, "d": 4} {
		got, ok := AnswerPosition(letter)
		if !ok || got != want {
			t.Errorf("AnswerPosition(%q) = %d, %v; want %d", letter, got, ok, want)
		}
	}
	for _, bad := range []string{"", "E", "1", "AB"} {
		if _, ok := AnswerPosition(bad); ok {
			t.Errorf("AnswerPosition(%q) must not map", bad)
		}
	}
	if Label(2) != "B" || Label(0) != "" || Label(5) != "" {
		t.Error("Label mapping")
	}
}

func TestRecord_CorrectOption(t *testing.T) {
	r := validRecord()
	r.CorrectAnswer = 3
	if r.CorrectOption() != "c" {
		t.Fatalf("got %q", r.CorrectOption())
	}
	r.CorrectAnswer = 9
	if r.CorrectOption() != "" {
		t.Fatal("out of range must be empty")
	}
}
