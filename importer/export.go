package importer

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hazyhaar/quizdoc/mcq"
)

const (
	mcqSheet   = "MCQs"
	statsSheet = "Stats"
)

var exportHeaders = []string{
	"ID", "Batch", "Topic", "Subtopic", "Difficulty", "No.", "Question",
	"Option A", "Option B", "Option C", "Option D", "Correct", "Correct Option",
}

// ExportXLSX returns an XLSX workbook (as bytes) with the records matching f
// on a "MCQs" sheet and the bank statistics on a "Stats" sheet.
func (im *Importer) ExportXLSX(ctx context.Context, f Filter) ([]byte, error) {
	start := time.Now()

	recs, err := im.store.ListMCQs(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("query mcqs: %w", err)
	}
	st, err := im.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}

	x := excelize.NewFile()
	defer x.Close()
	if err := x.SetSheetName(x.GetSheetName(0), mcqSheet); err != nil {
		return nil, err
	}
	if _, err := x.NewSheet(statsSheet); err != nil {
		return nil, err
	}
	idx, _ := x.GetSheetIndex(mcqSheet)
	x.SetActiveSheet(idx)

	write := func(sheet string, col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = x.SetCellValue(sheet, cell, v)
	}

	for i, h := range exportHeaders {
		write(mcqSheet, i+1, 1, h)
	}
	for i, r := range recs {
		row := i + 2
		values := []any{
			r.ID, r.BatchID, r.Topic, r.Subtopic, r.Difficulty, r.QuestionNumber, r.QuestionText,
			r.Options[0], r.Options[1], r.Options[2], r.Options[3],
			mcq.Label(r.CorrectAnswer), r.CorrectOption(),
		}
		for col, v := range values {
			write(mcqSheet, col+1, row, v)
		}
	}

	_ = x.SetColWidth(mcqSheet, "A", "B", 40) // ids
	_ = x.SetColWidth(mcqSheet, "C", "E", 14)
	_ = x.SetColWidth(mcqSheet, "F", "F", 6)
	_ = x.SetColWidth(mcqSheet, "G", "G", 60) // question
	_ = x.SetColWidth(mcqSheet, "H", "K", 28) // options
	_ = x.SetColWidth(mcqSheet, "M", "M", 28)

	row := 1
	put := func(label string, n int) {
		write(statsSheet, 1, row, label)
		write(statsSheet, 2, row, n)
		row++
	}
	put("Total", st.Total)
	put("Batches", st.Batches)
	row++
	write(statsSheet, 1, row, "Difficulty")
	row++
	// Configured levels first, in their configured order.
	levels := slices.Clone(im.cfg.Difficulties)
	for _, d := range sortedKeys(st.ByDifficulty) {
		if !slices.Contains(levels, d) {
			levels = append(levels, d)
		}
	}
	for _, d := range levels {
		put(d, st.ByDifficulty[d])
	}
	row++
	write(statsSheet, 1, row, "Topic")
	row++
	for _, t := range sortedKeys(st.ByTopic) {
		put(t, st.ByTopic[t])
	}
	_ = x.SetColWidth(statsSheet, "A", "A", 24)

	buf, err := x.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	im.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
