package mcq

// Primary runs the block strategy over the whole document text. Records
// follow block order; a failing block is reported and skipped.
func Primary(text string, meta Meta) Outcome {
	out := Outcome{Strategy: StrategyPrimary, Records: []Record{}, Report: newReport()}
	for i, b := range Segment(text) {
		rec, err := ParseBlock(b, meta)
		if err == nil {
			rec, err = Validate(rec)
		}
		if err != nil {
			out.Report.add(i+1, b.Token, err)
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out
}
