package importer

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExportXLSX(t *testing.T) {
	im := newTestImporter(t)
	ctx := t.Context()
	u := pdfUpload(quizLines...)
	u.Topic = "Go"
	if _, err := im.Import(ctx, u); err != nil {
		t.Fatal(err)
	}
	if _, err := im.Import(ctx, pdfUpload(quizLines...)); err != nil {
		t.Fatal(err)
	}

	data, err := im.ExportXLSX(ctx, Filter{Topic: "Go"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(mcqSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][6] != "Question" || rows[0][11] != "Correct" {
		t.Errorf("header: %v", rows[0])
	}
	r := rows[1]
	if r[2] != "Go" || r[5] != "1" || r[6] != "What is 2 + 2?" || r[11] != "B" || r[12] != "4" {
		t.Errorf("first row: %v", r)
	}

	stats, err := f.GetRows(statsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if stats[0][0] != "Total" || stats[0][1] != "4" {
		t.Errorf("stats total row: %v", stats[0])
	}
}

func TestHTTP_ExportXLSX(t *testing.T) {
	im := newTestImporter(t)
	if _, err := im.Import(t.Context(), pdfUpload(quizLines...)); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(im.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/mcqs/export.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != xlsxContentType {
		t.Fatalf("status=%d content-type=%q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	data, _ := io.ReadAll(resp.Body)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	rows, _ := f.GetRows(mcqSheet)
	if len(rows) != 3 {
		t.Errorf("rows = %d", len(rows))
	}
}
