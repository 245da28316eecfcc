package store

// Schema contains the complete DDL for the quizdoc tables.
const Schema = `
-- Import batches: one row per imported document
CREATE TABLE IF NOT EXISTS import_batches (
    id           TEXT PRIMARY KEY,
    filename     TEXT NOT NULL,
    format       TEXT NOT NULL,
    strategy     TEXT NOT NULL,
    record_count INTEGER NOT NULL DEFAULT 0,
    report_json  TEXT NOT NULL DEFAULT '{}',
    created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_batches_created ON import_batches(created_at);

-- Accepted MCQ records
CREATE TABLE IF NOT EXISTS mcqs (
    id             TEXT PRIMARY KEY,
    batch_id       TEXT NOT NULL,
    topic          TEXT NOT NULL,
    subtopic       TEXT NOT NULL,
    difficulty     TEXT NOT NULL,
    question_no    INTEGER NOT NULL CHECK (question_no >= 1),
    question       TEXT NOT NULL CHECK (trim(question) != ''),
    option1        TEXT NOT NULL CHECK (trim(option1) != ''),
    option2        TEXT NOT NULL CHECK (trim(option2) != ''),
    option3        TEXT NOT NULL CHECK (trim(option3) != ''),
    option4        TEXT NOT NULL CHECK (trim(option4) != ''),
    correct_answer INTEGER NOT NULL CHECK (correct_answer BETWEEN 1 AND 4),
    created_at     INTEGER NOT NULL,
    FOREIGN KEY (batch_id) REFERENCES import_batches(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_mcqs_batch ON mcqs(batch_id, question_no);
CREATE INDEX IF NOT EXISTS idx_mcqs_topic ON mcqs(topic, subtopic);
CREATE INDEX IF NOT EXISTS idx_mcqs_difficulty ON mcqs(difficulty);

-- Question counts per difficulty level
CREATE VIEW IF NOT EXISTS mcq_difficulty_stats AS
    SELECT difficulty, COUNT(*) AS total
    FROM mcqs
    GROUP BY difficulty;
`
