// Command quizdoc extracts multiple-choice questions from documents and
// serves the stored question bank.
//
// Usage:
//
//	quizdoc extract [-topic T] [-subtopic S] [-difficulty D] [-decoder rows] quiz.pdf   # print records, store nothing
//	quizdoc import  -db quizdoc.db [-topic T] ... quiz.pdf                               # store one batch
//	quizdoc serve   -config quizdoc.yaml | -db quizdoc.db [-listen :8080]                # HTTP API
//	quizdoc mcp     -config quizdoc.yaml | -db quizdoc.db                                # MCP over stdio
//	quizdoc stats   -db quizdoc.db
//	quizdoc export  -db quizdoc.db -o mcqs.xlsx [-topic T] [-difficulty D]
//
// Every subcommand accepts -log-level (debug, info, warn, error; default from
// LOG_LEVEL). QUIZDOC_DB and QUIZDOC_LISTEN override the config file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/quizdoc/docpipe"
	"github.com/hazyhaar/quizdoc/importer"
	"github.com/hazyhaar/quizdoc/mcq"
)

const version = "0.1.0"

const usage = `usage: quizdoc <command> [flags]

commands:
  extract   extract MCQs from a document and print them as JSON
  import    extract MCQs from a document and store them
  serve     run the HTTP API
  mcp       serve MCP tools over stdio
  stats     print question bank statistics
  export    write stored MCQs to an XLSX workbook
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "extract":
		err = runExtract(ctx, args)
	case "import":
		err = runImport(ctx, args)
	case "serve":
		err = runServe(ctx, args)
	case "mcp":
		err = runMCP(ctx, args)
	case "stats":
		err = runStats(ctx, args)
	case "export":
		err = runExport(ctx, args)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "quizdoc: unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("quizdoc: fatal", "command", cmd, "error", err)
		os.Exit(1)
	}
}

// commonFlags are shared by every subcommand that opens the database.
type commonFlags struct {
	config   *string
	db       *string
	logLevel *string
}

func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet("quizdoc "+name, flag.ExitOnError)
	logLevel := fs.String("log-level", envOr("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	return fs, logLevel
}

func withStore(fs *flag.FlagSet, logLevel *string) commonFlags {
	return commonFlags{
		config:   fs.String("config", "", "path to quizdoc.yaml config file"),
		db:       fs.String("db", "", "path to SQLite database"),
		logLevel: logLevel,
	}
}

func setupLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
	slog.SetDefault(logger)
	return logger
}

func resolveConfig(f commonFlags) (*importer.Config, error) {
	cfg := &importer.Config{}
	if *f.config != "" {
		var err error
		if cfg, err = importer.LoadConfigFile(*f.config); err != nil {
			return nil, err
		}
	}
	if v := os.Getenv("QUIZDOC_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("QUIZDOC_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if *f.db != "" {
		cfg.DBPath = *f.db
	}
	return cfg, nil
}

func openImporter(f commonFlags, logger *slog.Logger) (*importer.Importer, error) {
	cfg, err := resolveConfig(f)
	if err != nil {
		return nil, err
	}
	im, err := importer.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return im, nil
}

type metaFlags struct {
	topic, subtopic, difficulty *string
}

func addMetaFlags(fs *flag.FlagSet) metaFlags {
	return metaFlags{
		topic:      fs.String("topic", "", "topic name (default from config: Python)"),
		subtopic:   fs.String("subtopic", "", "subtopic name (default from config: Basics)"),
		difficulty: fs.String("difficulty", "", "difficulty level (default from config: medium)"),
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- extract ---

// runExtract runs acquisition and extraction without a database. Every
// supported format is accepted.
func runExtract(ctx context.Context, args []string) error {
	fs, logLevel := newFlagSet("extract")
	meta := addMetaFlags(fs)
	decoder := fs.String("decoder", docpipe.DecoderContentStream, "pdf decoder: content-stream or rows")
	strategy := fs.String("strategy", "", "run a single strategy: primary or fallback (default: primary, then fallback when empty)")
	fs.Parse(args)
	logger := setupLogger(*logLevel)

	if fs.NArg() != 1 {
		return errors.New("extract: exactly one document path required")
	}

	pipe := docpipe.New(docpipe.Config{PDFDecoder: *decoder, Logger: logger})
	doc, err := pipe.AcquireFile(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	m := mcq.Meta{Topic: *meta.topic, Subtopic: *meta.subtopic, Difficulty: *meta.difficulty}
	if m.Topic == "" {
		m.Topic = "Python"
	}
	if m.Subtopic == "" {
		m.Subtopic = "Basics"
	}
	if m.Difficulty == "" {
		m.Difficulty = "medium"
	}

	var res mcq.Result
	if *strategy == "" {
		res = mcq.Extract(doc.Text(), m)
	} else {
		fn, ok := mcq.Lookup(mcq.Strategy(*strategy))
		if !ok {
			return fmt.Errorf("extract: unknown strategy %q", *strategy)
		}
		res = mcq.Run(fn, doc.Text(), m)
	}

	logger.Info("quizdoc: extracted",
		"file", fs.Arg(0), "pages", doc.PageCount(), "strategy", res.Strategy,
		"records", len(res.Records), "failures", res.Report.Total())
	return printJSON(res)
}

// --- import ---

func runImport(ctx context.Context, args []string) error {
	fs, logLevel := newFlagSet("import")
	common := withStore(fs, logLevel)
	meta := addMetaFlags(fs)
	dryRun := fs.Bool("dry-run", false, "extract and gate without storing")
	fs.Parse(args)
	logger := setupLogger(*logLevel)

	if fs.NArg() != 1 {
		return errors.New("import: exactly one document path required")
	}

	im, err := openImporter(common, logger)
	if err != nil {
		return err
	}
	defer im.Close()

	u, f, err := importer.OpenUpload(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()
	u.Topic, u.Subtopic, u.Difficulty = *meta.topic, *meta.subtopic, *meta.difficulty

	if *dryRun {
		ext, err := im.Preview(ctx, u)
		if err != nil {
			return err
		}
		return printJSON(ext)
	}
	sum, err := im.Import(ctx, u)
	if err != nil {
		return err
	}
	return printJSON(sum)
}

// --- serve ---

func runServe(ctx context.Context, args []string) error {
	fs, logLevel := newFlagSet("serve")
	common := withStore(fs, logLevel)
	listen := fs.String("listen", "", "listen address (default :8080)")
	fs.Parse(args)
	logger := setupLogger(*logLevel)

	cfg, err := resolveConfig(common)
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	im, err := importer.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer im.Close()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           im.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("quizdoc: listening", "addr", cfg.Listen, "db", cfg.DBPath,
			"allowed_formats", cfg.AllowedFormats, "max_file_size", cfg.MaxFileSize)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("quizdoc: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// --- mcp ---

func runMCP(ctx context.Context, args []string) error {
	fs, logLevel := newFlagSet("mcp")
	common := withStore(fs, logLevel)
	fs.Parse(args)
	logger := setupLogger(*logLevel)

	im, err := openImporter(common, logger)
	if err != nil {
		return err
	}
	defer im.Close()

	srv := mcp.NewServer(&mcp.Implementation{Name: "quizdoc", Version: version}, nil)
	im.RegisterMCP(srv)

	logger.Info("quizdoc: mcp over stdio")
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// --- stats ---

func runStats(ctx context.Context, args []string) error {
	fs, logLevel := newFlagSet("stats")
	common := withStore(fs, logLevel)
	fs.Parse(args)
	logger := setupLogger(*logLevel)

	im, err := openImporter(common, logger)
	if err != nil {
		return err
	}
	defer im.Close()

	st, err := im.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	return printJSON(st)
}

// --- export ---

func runExport(ctx context.Context, args []string) error {
	fs, logLevel := newFlagSet("export")
	common := withStore(fs, logLevel)
	meta := addMetaFlags(fs)
	batch := fs.String("batch", "", "only records of this batch ID")
	out := fs.String("o", "mcqs.xlsx", "output file")
	fs.Parse(args)
	logger := setupLogger(*logLevel)

	im, err := openImporter(common, logger)
	if err != nil {
		return err
	}
	defer im.Close()

	data, err := im.ExportXLSX(ctx, importer.Filter{
		Topic:      *meta.topic,
		Subtopic:   *meta.subtopic,
		Difficulty: *meta.difficulty,
		BatchID:    *batch,
	})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	logger.Info("quizdoc: exported", "file", *out, "bytes", len(data))
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
