package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hazyhaar/quizdoc/dbopen"
	"github.com/hazyhaar/quizdoc/mcq"
)

// Batch is one imported document.
type Batch struct {
	ID          string     `json:"id"`
	Filename    string     `json:"filename"`
	Format      string     `json:"format"`
	Strategy    string     `json:"strategy"`
	RecordCount int        `json:"record_count"`
	Report      mcq.Report `json:"report"`
	CreatedAt   time.Time  `json:"created_at"`
}

// InsertBatch stores b and its records in one transaction: either the batch
// and every record are persisted, or nothing is.
func (s *Store) InsertBatch(ctx context.Context, b *Batch, records []MCQ) error {
	report, err := json.Marshal(b.Report)
	if err != nil {
		return fmt.Errorf("store: marshal report: %w", err)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	b.RecordCount = len(records)

	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO import_batches (id, filename, format, strategy, record_count, report_json, created_at)
			VALUES (?,?,?,?,?,?,?)`,
			b.ID, b.Filename, b.Format, b.Strategy, b.RecordCount, string(report), b.CreatedAt.UnixMilli(),
		); err != nil {
			return fmt.Errorf("store: insert batch: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO mcqs (id, batch_id, topic, subtopic, difficulty, question_no, question,
			                  option1, option2, option3, option4, correct_answer, created_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
		if err != nil {
			return fmt.Errorf("store: prepare mcq insert: %w", err)
		}
		defer stmt.Close()

		for i := range records {
			r := &records[i]
			r.BatchID = b.ID
			r.CreatedAt = b.CreatedAt
			if _, err := stmt.ExecContext(ctx,
				r.ID, r.BatchID, r.Topic, r.Subtopic, r.Difficulty, r.QuestionNumber, r.QuestionText,
				r.Options[0], r.Options[1], r.Options[2], r.Options[3], r.CorrectAnswer, r.CreatedAt.UnixMilli(),
			); err != nil {
				return fmt.Errorf("store: insert mcq %d (Q%d): %w", i+1, r.QuestionNumber, err)
			}
		}
		return nil
	})
}

// GetBatch retrieves a batch by ID.
func (s *Store) GetBatch(ctx context.Context, id string) (*Batch, error) {
	b := &Batch{}
	var report string
	var created int64
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, filename, format, strategy, record_count, report_json, created_at
		FROM import_batches WHERE id = ?`, id).Scan(
		&b.ID, &b.Filename, &b.Format, &b.Strategy, &b.RecordCount, &report, &created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get batch: %w", err)
	}
	if err := json.Unmarshal([]byte(report), &b.Report); err != nil {
		return nil, fmt.Errorf("store: batch %s report: %w", id, err)
	}
	b.CreatedAt = time.UnixMilli(created)
	return b, nil
}

// ListBatches returns batches, newest first.
func (s *Store) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, filename, format, strategy, record_count, report_json, created_at
		FROM import_batches ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list batches: %w", err)
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		var b Batch
		var report string
		var created int64
		if err := rows.Scan(&b.ID, &b.Filename, &b.Format, &b.Strategy, &b.RecordCount, &report, &created); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(report), &b.Report)
		b.CreatedAt = time.UnixMilli(created)
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteBatch removes a batch and, by cascade, its records.
func (s *Store) DeleteBatch(ctx context.Context, id string) error {
	res, err := dbopen.Exec(ctx, s.DB, `DELETE FROM import_batches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete batch: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}
	return nil
}
