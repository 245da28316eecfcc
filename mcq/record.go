// Package mcq recovers multiple-choice question records from raw document text.
//
// Two strategies produce the same Record shape:
//
//   - Primary splits the text into blocks at "Qn." markers, collapses the
//     whitespace of each block and decomposes it into question, options A-D
//     and an "Answer:" letter.
//   - Fallback walks the text line by line and tracks question, option and
//     answer lines with a small state machine.
//
// Extract runs Primary and only falls back when Primary yields no record.
// Nothing in this package logs or keeps state between calls: every question
// that is dropped shows up in the returned Report with its cause.
//
// Usage:
//
//	res := mcq.Extract(doc.Text(), mcq.Meta{Topic: "Python", Subtopic: "Loops", Difficulty: "easy"})
//	fmt.Println(res.Strategy, len(res.Records), res.Report.Total(), "dropped")
package mcq

// Meta is the caller-supplied batch metadata copied verbatim into every record.
type Meta struct {
	Topic      string `json:"topic"`
	Subtopic   string `json:"subtopic"`
	Difficulty string `json:"difficulty"`
}

// Record is one recovered multiple-choice question.
type Record struct {
	Topic          string    `json:"topic"`
	Subtopic       string    `json:"subtopic"`
	Difficulty     string    `json:"difficulty"`
	QuestionNumber int       `json:"question_no"`
	QuestionText   string    `json:"question"`
	Options        [4]string `json:"options"`        // positions 1-4 hold labels A-D
	CorrectAnswer  int       `json:"correct_answer"` // 1-4
}

func newRecord(meta Meta, number int, question string, options [4]string, answer int) Record {
	return Record{
		Topic:          meta.Topic,
		Subtopic:       meta.Subtopic,
		Difficulty:     meta.Difficulty,
		QuestionNumber: number,
		QuestionText:   question,
		Options:        options,
		CorrectAnswer:  answer,
	}
}

// CorrectOption returns the text of the correct option, or "" when
// CorrectAnswer is out of range.
func (r Record) CorrectOption() string {
	if r.CorrectAnswer < 1 || r.CorrectAnswer > len(r.Options) {
		return ""
	}
	return r.Options[r.CorrectAnswer-1]
}
