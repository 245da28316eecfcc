package mcq

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// answerRe matches "Answer: B" in a normalised block. "Reanswer:" and
	// "Answer: Dog" do not match.
	answerRe = regexp.MustCompile(`(?i)\banswer:\s*([a-d])\b`)

	// optionMarkerRe matches a bare option marker "B)". The label must not
	// follow a letter, a digit or "(", so "f(a)" inside a question is left
	// alone while "2+2?A)" and "x,B)" still split. Group 1 is the label.
	optionMarkerRe = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}(])([a-d])\)`)
)

// ParseBlock decomposes one block into a record. The returned error is a
// *Failure tagged AnswerNotFound, IncompleteOptions or EmptyQuestion. The
// record is not validated; Primary does that.
func ParseBlock(b Block, meta Meta) (Record, error) {
	content := normalizeSpace(b.Content)

	m, err := b.findAnswer(content)
	if err != nil {
		return Record{}, err
	}
	answer, _ := AnswerPosition(content[m[2]:m[3]])

	question, options, detail := splitOptions(strings.TrimSpace(content[:m[0]]))
	if detail != "" {
		return Record{}, b.fail(IncompleteOptions, detail)
	}

	question = stripToken(question, b.Token)
	if question == "" {
		return Record{}, b.fail(EmptyQuestion, "no question text before option A)")
	}

	// An unparsable number stays 0 and is rejected by Validate.
	number, _ := strconv.Atoi(b.Number)

	return newRecord(meta, number, question, options, answer), nil
}

// findAnswer returns the submatch indexes of the answer marker. It is the
// first marker after the point where all four option labels have appeared,
// so "answer:" in the question or in a trailing explanation is ignored.
// Without four labels the first marker is used and splitOptions reports
// what is missing.
func (b Block) findAnswer(content string) ([]int, error) {
	all := answerRe.FindAllStringSubmatchIndex(content, -1)
	if len(all) == 0 {
		return nil, b.fail(AnswerNotFound, "no \"Answer:\" marker with a letter A-D")
	}

	after := optionsEnd(content)
	if after < 0 {
		return all[0], nil
	}
	for _, m := range all {
		if m[0] >= after {
			return m, nil
		}
	}
	return nil, b.fail(AnswerNotFound, "no \"Answer:\" marker after the four options")
}

// optionsEnd returns the offset just past the marker that completes the set
// A) to D), or -1 when some label never appears.
func optionsEnd(content string) int {
	var seen [4]bool
	n := 0
	for _, loc := range optionMarkerRe.FindAllStringSubmatchIndex(content, -1) {
		pos, _ := AnswerPosition(content[loc[2]:loc[3]])
		if seen[pos-1] {
			continue
		}
		seen[pos-1] = true
		if n++; n == len(seen) {
			return loc[1]
		}
	}
	return -1
}

func (b Block) fail(kind FailureKind, detail string) *Failure {
	return &Failure{Kind: kind, Token: b.Token, Detail: detail}
}

// splitOptions separates the question text from the four labelled options.
// A non-empty detail describes why the options are incomplete.
func splitOptions(body string) (string, [4]string, string) {
	var options [4]string

	locs := optionMarkerRe.FindAllStringSubmatchIndex(body, -1)
	if len(locs) == 0 {
		return "", options, "no option markers A) to D)"
	}

	var seen [4]bool
	for i, loc := range locs {
		label := strings.ToUpper(body[loc[2]:loc[3]])
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][2]
		}
		pos, _ := AnswerPosition(label)
		if seen[pos-1] {
			return "", options, fmt.Sprintf("option %s) appears more than once", label)
		}
		seen[pos-1] = true
		options[pos-1] = strings.TrimSpace(body[loc[1]:end])
	}

	var missing []string
	for i, ok := range seen {
		if !ok {
			missing = append(missing, labels[i])
		}
	}
	if len(missing) > 0 {
		return "", options, "missing option " + strings.Join(missing, ", ")
	}
	for i, text := range options {
		if text == "" {
			return "", options, fmt.Sprintf("option %s) has no text", labels[i])
		}
	}

	return strings.TrimSpace(body[:locs[0][2]]), options, ""
}

// stripToken removes a leading occurrence of the block's own marker.
func stripToken(question, token string) string {
	if token != "" && len(question) >= len(token) && strings.EqualFold(question[:len(token)], token) {
		question = question[len(token):]
	}
	return strings.TrimSpace(question)
}

// normalizeSpace collapses every whitespace run, newlines and Unicode
// spaces included, to a single space and trims both ends.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
