package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hazyhaar/quizdoc/mcq"
)

// MCQ is a persisted record with its surrogate key.
type MCQ struct {
	ID      string `json:"id"`
	BatchID string `json:"batch_id"`
	mcq.Record
	CreatedAt time.Time `json:"created_at"`
}

// Filter selects stored records. Zero fields match everything.
type Filter struct {
	Topic      string `json:"topic,omitempty"`
	Subtopic   string `json:"subtopic,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	BatchID    string `json:"batch_id,omitempty"`
	Limit      int    `json:"limit,omitempty"` // 0 = no limit
	Offset     int    `json:"offset,omitempty"`
}

func (f Filter) where() (string, []any) {
	var conds []string
	var args []any
	add := func(col, v string) {
		if v != "" {
			conds = append(conds, col+" = ?")
			args = append(args, v)
		}
	}
	add("topic", f.Topic)
	add("subtopic", f.Subtopic)
	add("difficulty", f.Difficulty)
	add("batch_id", f.BatchID)
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListMCQs returns records matching f in import order.
func (s *Store) ListMCQs(ctx context.Context, f Filter) ([]MCQ, error) {
	where, args := f.where()
	q := `SELECT id, batch_id, topic, subtopic, difficulty, question_no, question,
	             option1, option2, option3, option4, correct_answer, created_at
	      FROM mcqs` + where + ` ORDER BY created_at, batch_id, rowid`
	if f.Limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list mcqs: %w", err)
	}
	defer rows.Close()

	out := []MCQ{}
	for rows.Next() {
		var m MCQ
		var created int64
		if err := rows.Scan(&m.ID, &m.BatchID, &m.Topic, &m.Subtopic, &m.Difficulty, &m.QuestionNumber,
			&m.QuestionText, &m.Options[0], &m.Options[1], &m.Options[2], &m.Options[3],
			&m.CorrectAnswer, &created); err != nil {
			return nil, err
		}
		m.CreatedAt = time.UnixMilli(created)
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountMCQs counts records matching f, ignoring Limit and Offset.
func (s *Store) CountMCQs(ctx context.Context, f Filter) (int, error) {
	where, args := f.where()
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM mcqs`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count mcqs: %w", err)
	}
	return n, nil
}

// Stats summarises the question bank.
type Stats struct {
	Total        int            `json:"total"`
	Batches      int            `json:"batches"`
	ByDifficulty map[string]int `json:"by_difficulty"`
	ByTopic      map[string]int `json:"by_topic"`
}

// Stats returns totals, per-difficulty counts (from the mcq_difficulty_stats
// view) and per-topic counts.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ByDifficulty: map[string]int{}, ByTopic: map[string]int{}}

	if err := s.DB.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM mcqs), (SELECT COUNT(*) FROM import_batches)`).Scan(&st.Total, &st.Batches); err != nil {
		return nil, fmt.Errorf("store: stats totals: %w", err)
	}
	if err := s.groupCounts(ctx, `SELECT difficulty, total FROM mcq_difficulty_stats`, st.ByDifficulty); err != nil {
		return nil, err
	}
	if err := s.groupCounts(ctx, `SELECT topic, COUNT(*) FROM mcqs GROUP BY topic`, st.ByTopic); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Store) groupCounts(ctx context.Context, query string, into map[string]int) error {
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("store: stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}
