package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/quizdoc/dbopen"
	"github.com/hazyhaar/quizdoc/mcq"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return &Store{DB: dbopen.OpenMemory(t, dbopen.WithSchema(Schema))}
}

func record(n int, topic, difficulty string) mcq.Record {
	return mcq.Record{
		Topic:          topic,
		Subtopic:       "Basics",
		Difficulty:     difficulty,
		QuestionNumber: n,
		QuestionText:   "Question?",
		Options:        [4]string{"a", "b", "c", "d"},
		CorrectAnswer:  2,
	}
}

func insert(t *testing.T, s *Store, id string, recs ...mcq.Record) *Batch {
	t.Helper()
	b := &Batch{ID: id, Filename: id + ".pdf", Format: "pdf", Strategy: "primary"}
	b.Report.Counts = map[mcq.FailureKind]int{mcq.AnswerNotFound: 1}
	rows := make([]MCQ, len(recs))
	for i, r := range recs {
		rows[i] = MCQ{ID: id + "_mcq_" + string(rune('a'+i)), Record: r}
	}
	if err := s.InsertBatch(context.Background(), b, rows); err != nil {
		t.Fatalf("insert batch %s: %v", id, err)
	}
	return b
}

func TestBatchRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	insert(t, s, "upl_1", record(1, "Python", "easy"), record(2, "Python", "easy"))

	got, err := s.GetBatch(ctx, "upl_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RecordCount != 2 {
		t.Errorf("RecordCount: got %d, want 2", got.RecordCount)
	}
	if got.Report.Count(mcq.AnswerNotFound) != 1 {
		t.Errorf("report counts: %+v", got.Report.Counts)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	mcqs, err := s.ListMCQs(ctx, Filter{BatchID: "upl_1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(mcqs) != 2 {
		t.Fatalf("mcqs: got %d, want 2", len(mcqs))
	}
	if mcqs[0].QuestionNumber != 1 || mcqs[1].QuestionNumber != 2 {
		t.Errorf("order: %d, %d", mcqs[0].QuestionNumber, mcqs[1].QuestionNumber)
	}
	if mcqs[0].Options != [4]string{"a", "b", "c", "d"} || mcqs[0].CorrectAnswer != 2 {
		t.Errorf("record fields: %+v", mcqs[0].Record)
	}
	if mcqs[0].BatchID != "upl_1" {
		t.Errorf("BatchID: %q", mcqs[0].BatchID)
	}
}

func TestGetBatch_NotFound(t *testing.T) {
	s := testStore(t)
	if _, err := s.GetBatch(context.Background(), "upl_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestInsertBatch_AllOrNothing(t *testing.T) {
	// WHAT: A record violating the schema aborts the whole batch.
	// WHY: A batch must never be half-persisted.
	s := testStore(t)
	ctx := context.Background()

	bad := record(2, "Python", "easy")
	bad.CorrectAnswer = 5
	b := &Batch{ID: "upl_bad", Filename: "x.pdf", Format: "pdf", Strategy: "primary"}
	err := s.InsertBatch(ctx, b, []MCQ{{ID: "m1", Record: record(1, "Python", "easy")}, {ID: "m2", Record: bad}})
	if err == nil {
		t.Fatal("expected CHECK constraint error")
	}

	if _, err := s.GetBatch(ctx, "upl_bad"); !errors.Is(err, ErrNotFound) {
		t.Errorf("batch must be rolled back, got %v", err)
	}
	if n, _ := s.CountMCQs(ctx, Filter{}); n != 0 {
		t.Errorf("mcqs after rollback: %d", n)
	}
}

func TestEmptyBatch(t *testing.T) {
	s := testStore(t)
	b := insert(t, s, "upl_empty")
	if b.RecordCount != 0 {
		t.Fatalf("RecordCount = %d", b.RecordCount)
	}
	if _, err := s.GetBatch(context.Background(), "upl_empty"); err != nil {
		t.Fatal(err)
	}
}

func TestListMCQs_Filter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	insert(t, s, "upl_1", record(1, "Python", "easy"), record(2, "Go", "hard"))
	insert(t, s, "upl_2", record(1, "Python", "hard"))

	tests := []struct {
		name string
		f    Filter
		want int
	}{
		{"all", Filter{}, 3},
		{"topic", Filter{Topic: "Python"}, 2},
		{"difficulty", Filter{Difficulty: "hard"}, 2},
		{"topic and difficulty", Filter{Topic: "Python", Difficulty: "hard"}, 1},
		{"batch", Filter{BatchID: "upl_2"}, 1},
		{"limit", Filter{Limit: 2}, 2},
		{"offset", Filter{Limit: 2, Offset: 2}, 1},
		{"no match", Filter{Topic: "Rust"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListMCQs(ctx, tt.f)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d, want %d", len(got), tt.want)
			}
		})
	}

	n, err := s.CountMCQs(ctx, Filter{Topic: "Python", Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("CountMCQs ignores limit: got %d, want 2", n)
	}
}

func TestStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	insert(t, s, "upl_1", record(1, "Python", "easy"), record(2, "Go", "hard"))
	insert(t, s, "upl_2", record(1, "Python", "hard"))

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 3 || st.Batches != 2 {
		t.Errorf("total = %d, batches = %d", st.Total, st.Batches)
	}
	if st.ByDifficulty["hard"] != 2 || st.ByDifficulty["easy"] != 1 {
		t.Errorf("by difficulty: %v", st.ByDifficulty)
	}
	if st.ByTopic["Python"] != 2 || st.ByTopic["Go"] != 1 {
		t.Errorf("by topic: %v", st.ByTopic)
	}
}

func TestDeleteBatch_Cascades(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	insert(t, s, "upl_1", record(1, "Python", "easy"))
	insert(t, s, "upl_2", record(1, "Python", "hard"))

	if err := s.DeleteBatch(ctx, "upl_1"); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.CountMCQs(ctx, Filter{}); n != 1 {
		t.Errorf("mcqs after delete: %d, want 1", n)
	}
	if err := s.DeleteBatch(ctx, "upl_1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: %v, want ErrNotFound", err)
	}
}

func TestListBatches_NewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	old := &Batch{ID: "upl_old", Filename: "a.pdf", Format: "pdf", Strategy: "primary", CreatedAt: time.Now().Add(-time.Hour)}
	if err := s.InsertBatch(ctx, old, nil); err != nil {
		t.Fatal(err)
	}
	insert(t, s, "upl_new")

	got, err := s.ListBatches(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "upl_new" {
		t.Fatalf("batches: %+v", got)
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "quizdoc.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	insert(t, s, "upl_1", record(1, "Python", "easy"))
	s.Close()

	// Reopening applies the schema again without error and keeps data.
	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if n, _ := s.CountMCQs(context.Background(), Filter{}); n != 1 {
		t.Errorf("count after reopen: %d", n)
	}
}
