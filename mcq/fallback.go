package mcq

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	questionLineRe = regexp.MustCompile(`(?i)^Q(\d+)\.\s*`)
	optionLineRe   = regexp.MustCompile(`(?i)^([a-d])\)\s*`)
	answerLineRe   = regexp.MustCompile(`(?i)^answer:`)
	answerLetterRe = regexp.MustCompile(`(?i)^answer:\s*([a-d])\b`)
)

type lineState int

const (
	seeking lineState = iota
	collectingOptions
	awaitingAnswer
)

type sourceLine struct {
	no   int // 1-based line number in the document text
	text string
}

// nonBlankLines splits text on newlines, trims each line and drops blanks.
func nonBlankLines(text string) []sourceLine {
	raw := strings.Split(text, "\n")
	lines := make([]sourceLine, 0, len(raw))
	for i, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, sourceLine{no: i + 1, text: l})
	}
	return lines
}

// lineScan is the state of one Fallback run.
type lineScan struct {
	meta  Meta
	out   Outcome
	state lineState
	next  int // question number of the next emitted record

	start    int // line where the current question began
	token    string
	question string
	options  []string
}

// Fallback runs the line strategy. Options are taken in arrival order, not
// by label. Question numbers come from an internal counter starting at 1,
// not from the document. An unfinished question at end of input is dropped.
func Fallback(text string, meta Meta) Outcome {
	s := &lineScan{
		meta: meta,
		out:  Outcome{Strategy: StrategyFallback, Records: []Record{}, Report: newReport()},
		next: 1,
	}
	for _, ln := range nonBlankLines(text) {
		s.feed(ln)
	}
	switch s.state {
	case collectingOptions:
		s.drop(IncompleteOptions, fmt.Sprintf("end of text after %d of 4 options", len(s.options)))
	case awaitingAnswer:
		s.drop(AnswerNotFound, "end of text before an \"Answer:\" line")
	}
	return s.out
}

func (s *lineScan) feed(ln sourceLine) {
	if s.state != seeking && questionLineRe.MatchString(ln.text) {
		if s.state == collectingOptions {
			s.drop(IncompleteOptions, fmt.Sprintf("next question at line %d after %d of 4 options", ln.no, len(s.options)))
		} else {
			s.drop(AnswerNotFound, fmt.Sprintf("next question at line %d before an \"Answer:\" line", ln.no))
		}
	}

	switch s.state {
	case seeking:
		m := questionLineRe.FindString(ln.text)
		if m == "" {
			return
		}
		s.start = ln.no
		s.token = strings.TrimSpace(m)
		s.question = strings.TrimSpace(ln.text[len(m):])
		s.options = s.options[:0]
		s.state = collectingOptions

	case collectingOptions:
		m := optionLineRe.FindString(ln.text)
		if m == "" {
			return
		}
		s.options = append(s.options, strings.TrimSpace(ln.text[len(m):]))
		if len(s.options) == 4 {
			s.state = awaitingAnswer
		}

	case awaitingAnswer:
		if answerLineRe.MatchString(ln.text) {
			s.emit(ln)
		}
	}
}

func (s *lineScan) emit(ln sourceLine) {
	m := answerLetterRe.FindStringSubmatch(ln.text)
	if m == nil {
		s.fail(invalid(InvariantCorrectAnswer, fmt.Sprintf("answer line %d names no option A-D: %q", ln.no, ln.text)))
		return
	}
	if s.question == "" {
		s.drop(EmptyQuestion, "question line has no text after the marker")
		return
	}
	answer, _ := AnswerPosition(m[1])

	var options [4]string
	copy(options[:], s.options)

	rec, err := Validate(newRecord(s.meta, s.next, s.question, options, answer))
	if err != nil {
		s.fail(err)
		return
	}
	s.out.Records = append(s.out.Records, rec)
	s.next++
	s.reset()
}

func (s *lineScan) drop(kind FailureKind, detail string) {
	s.fail(&Failure{Kind: kind, Detail: detail})
}

func (s *lineScan) fail(err error) {
	s.out.Report.add(s.start, s.token, err)
	s.reset()
}

func (s *lineScan) reset() {
	s.state = seeking
	s.token = ""
	s.question = ""
	s.options = s.options[:0]
}
