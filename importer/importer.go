// Package importer turns uploaded documents into stored MCQ records.
//
// It owns everything around the extraction core: upload gating (allowed
// formats, size ceiling), batch metadata defaults, running mcq.Extract over
// the acquired text, and persisting accepted records per import batch. The
// same operations are exposed over HTTP (chi) and MCP.
//
// Usage:
//
//	im, err := importer.New(cfg, logger)
//	defer im.Close()
//	sum, err := im.Import(ctx, importer.Upload{Filename: "quiz.pdf", Size: n, Body: f})
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/hazyhaar/quizdoc/docpipe"
	"github.com/hazyhaar/quizdoc/idgen"
	"github.com/hazyhaar/quizdoc/importer/internal/store"
	"github.com/hazyhaar/quizdoc/mcq"
)

var (
	// ErrTooLarge is returned when an upload exceeds Config.MaxFileSize.
	ErrTooLarge = docpipe.ErrTooLarge
	// ErrFormatNotAllowed is returned for a supported format that the
	// configuration does not accept.
	ErrFormatNotAllowed = errors.New("importer: format not allowed")
	// ErrInvalidMetadata is returned for metadata outside the accepted choices.
	ErrInvalidMetadata = errors.New("importer: invalid metadata")
	// ErrNotFound is returned when a batch does not exist.
	ErrNotFound = store.ErrNotFound
)

type (
	// Filter selects stored records.
	Filter = store.Filter
	// StoredMCQ is a persisted record with its surrogate key.
	StoredMCQ = store.MCQ
	// Batch is one imported document.
	Batch = store.Batch
	// Stats summarises the question bank.
	Stats = store.Stats
)

// Upload is a document handed to the importer.
type Upload struct {
	Filename   string
	Size       int64 // -1 when unknown; the body is still bounded while reading
	Body       io.Reader
	Topic      string
	Subtopic   string
	Difficulty string
}

// Extraction is the result of a preview: what would be imported.
type Extraction struct {
	Filename string                     `json:"filename"`
	Format   docpipe.Format             `json:"format"`
	Meta     mcq.Meta                   `json:"meta"`
	Pages    int                        `json:"pages"`
	Quality  *docpipe.ExtractionQuality `json:"quality,omitempty"`
	mcq.Result
}

// Summary describes a completed import.
type Summary struct {
	BatchID   string         `json:"batch_id"`
	Filename  string         `json:"filename"`
	Format    docpipe.Format `json:"format"`
	Strategy  mcq.Strategy   `json:"strategy"`
	Created   int            `json:"created"`
	RecordIDs []string       `json:"record_ids"`
	Report    mcq.Report     `json:"report"`
	Attempts  []mcq.Attempt  `json:"attempts"`
	CreatedAt time.Time      `json:"created_at"`
}

// Importer is the import orchestrator.
type Importer struct {
	cfg      *Config
	pipe     *docpipe.Pipeline
	store    *store.Store
	logger   *slog.Logger
	recordID idgen.Generator
	batchID  idgen.Generator
	now      func() time.Time
}

// Option configures an Importer.
type Option func(*Importer)

// WithIDGenerators replaces the record and batch ID generators.
func WithIDGenerators(record, batch idgen.Generator) Option {
	return func(im *Importer) {
		im.recordID = record
		im.batchID = batch
	}
}

// WithClock replaces the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(im *Importer) { im.now = now }
}

// New creates an Importer and opens its database.
func New(cfg *Config, logger *slog.Logger, opts ...Option) (*Importer, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	im := &Importer{
		cfg:   cfg,
		store: s,
		pipe: docpipe.New(docpipe.Config{
			MaxFileSize: cfg.MaxFileSize,
			PDFDecoder:  cfg.PDFDecoder,
			Logger:      logger,
		}),
		logger:   logger,
		recordID: idgen.Prefixed("mcq_", idgen.Default),
		batchID:  idgen.Prefixed("upl_", idgen.Default),
		now:      time.Now,
	}
	for _, o := range opts {
		o(im)
	}
	return im, nil
}

// Close closes the database.
func (im *Importer) Close() error {
	return im.store.Close()
}

// Config returns the effective configuration.
func (im *Importer) Config() Config { return *im.cfg }

// Pipeline returns the acquisition pipeline, for registering its tools.
func (im *Importer) Pipeline() *docpipe.Pipeline { return im.pipe }

// AllowedFormats returns the accepted upload formats.
func (im *Importer) AllowedFormats() []string {
	return slices.Clone(im.cfg.AllowedFormats)
}

// gate checks the upload against the format allow-list and size ceiling.
func (im *Importer) gate(u Upload) (docpipe.Format, error) {
	format, err := docpipe.Detect(u.Filename)
	if err != nil {
		return "", err
	}
	if !slices.Contains(im.cfg.AllowedFormats, string(format)) {
		return "", fmt.Errorf("%w: %s (allowed: %s)", ErrFormatNotAllowed, format, strings.Join(im.cfg.AllowedFormats, ", "))
	}
	if u.Size > im.cfg.MaxFileSize {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, u.Size, im.cfg.MaxFileSize)
	}
	return format, nil
}

// Meta applies the configured defaults to the uploader's metadata and checks
// the difficulty against the accepted choices.
func (im *Importer) Meta(topic, subtopic, difficulty string) (mcq.Meta, error) {
	m := mcq.Meta{
		Topic:      strings.TrimSpace(topic),
		Subtopic:   strings.TrimSpace(subtopic),
		Difficulty: strings.ToLower(strings.TrimSpace(difficulty)),
	}
	if m.Topic == "" {
		m.Topic = im.cfg.Defaults.Topic
	}
	if m.Subtopic == "" {
		m.Subtopic = im.cfg.Defaults.Subtopic
	}
	if m.Difficulty == "" {
		m.Difficulty = im.cfg.Defaults.Difficulty
	}
	i := slices.IndexFunc(im.cfg.Difficulties, func(d string) bool { return strings.EqualFold(d, m.Difficulty) })
	if i < 0 {
		return mcq.Meta{}, fmt.Errorf("%w: difficulty %q is not one of %s",
			ErrInvalidMetadata, difficulty, strings.Join(im.cfg.Difficulties, ", "))
	}
	m.Difficulty = im.cfg.Difficulties[i]
	return m, nil
}

// Preview gates and extracts an upload without persisting anything.
func (im *Importer) Preview(ctx context.Context, u Upload) (*Extraction, error) {
	format, err := im.gate(u)
	if err != nil {
		return nil, err
	}
	meta, err := im.Meta(u.Topic, u.Subtopic, u.Difficulty)
	if err != nil {
		return nil, err
	}

	doc, err := im.pipe.Acquire(ctx, u.Filename, u.Body)
	if err != nil {
		return nil, err
	}
	im.warnQuality(doc)

	return &Extraction{
		Filename: u.Filename,
		Format:   format,
		Meta:     meta,
		Pages:    doc.PageCount(),
		Quality:  doc.Quality,
		Result:   mcq.Extract(doc.Text(), meta),
	}, nil
}

// warnQuality logs documents whose text layer cannot carry every question.
func (im *Importer) warnQuality(doc *docpipe.Document) {
	q := doc.Quality
	if q == nil {
		return
	}
	if q.NeedsOCR() {
		im.logger.Warn("importer: document text looks unusable, OCR may be required",
			"filename", doc.Name, "pages", doc.PageCount(),
			"chars_per_page", q.CharsPerPage, "printable_ratio", q.PrintableRatio)
	}
	if q.HasVisualGap() {
		im.logger.Warn("importer: questions reference figures that are not in the text",
			"filename", doc.Name, "visual_refs", q.VisualRefCount)
	}
}

// Import extracts an upload and persists the batch with all its records in
// one transaction. A document yielding no record is still a batch.
func (im *Importer) Import(ctx context.Context, u Upload) (*Summary, error) {
	ext, err := im.Preview(ctx, u)
	if err != nil {
		return nil, err
	}

	batch := &store.Batch{
		ID:        im.batchID(),
		Filename:  ext.Filename,
		Format:    string(ext.Format),
		Strategy:  string(ext.Strategy),
		Report:    ext.Report,
		CreatedAt: im.now(),
	}
	rows := make([]store.MCQ, len(ext.Records))
	ids := make([]string, len(ext.Records))
	for i, r := range ext.Records {
		ids[i] = im.recordID()
		rows[i] = store.MCQ{ID: ids[i], Record: r}
	}
	if err := im.store.InsertBatch(ctx, batch, rows); err != nil {
		return nil, fmt.Errorf("importer: persist %s: %w", u.Filename, err)
	}

	im.logger.Info("importer: batch imported",
		"batch_id", batch.ID,
		"filename", batch.Filename,
		"strategy", batch.Strategy,
		"records", len(rows),
		"failures", ext.Report.Total(),
		"answer_not_found", ext.Report.Count(mcq.AnswerNotFound),
		"incomplete_options", ext.Report.Count(mcq.IncompleteOptions),
		"empty_question", ext.Report.Count(mcq.EmptyQuestion),
		"invalid_record", ext.Report.Count(mcq.InvalidRecord),
	)

	return &Summary{
		BatchID:   batch.ID,
		Filename:  batch.Filename,
		Format:    ext.Format,
		Strategy:  ext.Strategy,
		Created:   len(rows),
		RecordIDs: ids,
		Report:    ext.Report,
		Attempts:  ext.Attempts,
		CreatedAt: batch.CreatedAt,
	}, nil
}

// List returns stored records matching f.
func (im *Importer) List(ctx context.Context, f Filter) ([]StoredMCQ, error) {
	return im.store.ListMCQs(ctx, f)
}

// Count counts stored records matching f.
func (im *Importer) Count(ctx context.Context, f Filter) (int, error) {
	return im.store.CountMCQs(ctx, f)
}

// Stats summarises the stored question bank.
func (im *Importer) Stats(ctx context.Context) (*Stats, error) {
	return im.store.Stats(ctx)
}

// Batch returns an import batch by ID.
func (im *Importer) Batch(ctx context.Context, id string) (*Batch, error) {
	return im.store.GetBatch(ctx, id)
}

// Batches returns the most recent batches.
func (im *Importer) Batches(ctx context.Context, limit int) ([]Batch, error) {
	return im.store.ListBatches(ctx, limit)
}

// DeleteBatch removes a batch and its records.
func (im *Importer) DeleteBatch(ctx context.Context, id string) error {
	if err := im.store.DeleteBatch(ctx, id); err != nil {
		return err
	}
	im.logger.Info("importer: batch deleted", "batch_id", id)
	return nil
}
