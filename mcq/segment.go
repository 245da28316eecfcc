package mcq

import "regexp"

// questionMarkerRe matches a question number marker such as "Q12.".
var questionMarkerRe = regexp.MustCompile(`(?i)Q(\d+)\.`)

// Block is the raw text attributed to one question by the primary strategy.
type Block struct {
	Token   string // marker as written, e.g. "Q12."
	Number  string // digits of the marker
	Content string // text after the marker up to the next marker or end of text
	Offset  int    // byte offset of the marker in the document text
}

// Segment splits text into blocks, one per question marker, in document
// order. Text before the first marker is discarded. No marker, no block.
func Segment(text string) []Block {
	locs := questionMarkerRe.FindAllStringSubmatchIndex(text, -1)
	blocks := make([]Block, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		blocks = append(blocks, Block{
			Token:   text[loc[0]:loc[1]],
			Number:  text[loc[2]:loc[3]],
			Content: text[loc[1]:end],
			Offset:  loc[0],
		})
	}
	return blocks
}
