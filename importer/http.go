package importer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/quizdoc/docpipe"
	"github.com/hazyhaar/quizdoc/kit"
	"github.com/hazyhaar/quizdoc/shield"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handler returns the HTTP API.
//
//	GET    /health
//	POST   /api/uploads              multipart: document, topic_name, sub_topic_name, difficulty_level; ?dry_run=1
//	GET    /api/mcqs                 ?topic= &subtopic= &difficulty= &batch_id= &limit= &offset=
//	GET    /api/mcqs/stats
//	GET    /api/mcqs/export.xlsx     same filters as /api/mcqs
//	GET    /api/batches              ?limit=
//	GET    /api/batches/{batchID}
//	DELETE /api/batches/{batchID}
//
// Write routes require Basic auth when an admin password hash is configured.
func (im *Importer) Handler() http.Handler {
	r := chi.NewRouter()
	for _, mw := range shield.APIStack(im.cfg.MaxFileSize) {
		r.Use(mw)
	}
	r.Use(middleware.Recoverer)
	r.Use(im.accessLog)

	authed := shield.BasicAuth(im.cfg.AdminUser, im.cfg.AdminPasswordHash)
	upload := im.UploadEndpoint()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.With(authed).Post("/api/uploads", func(w http.ResponseWriter, r *http.Request) {
		// Small fields stay in memory; the file part spills to disk.
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, hdr, err := r.FormFile("document")
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("missing multipart file field \"document\""))
			return
		}
		defer file.Close()

		req := &UploadRequest{
			Upload: Upload{
				Filename:   hdr.Filename,
				Size:       hdr.Size,
				Body:       file,
				Topic:      r.FormValue("topic_name"),
				Subtopic:   r.FormValue("sub_topic_name"),
				Difficulty: r.FormValue("difficulty_level"),
			},
			DryRun: queryBool(r, "dry_run"),
		}
		resp, err := upload(r.Context(), req)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		code := http.StatusCreated
		if req.DryRun {
			code = http.StatusOK
		}
		writeJSON(w, code, resp)
	})

	r.Route("/api/mcqs", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			f := filterFrom(r)
			items, err := im.List(r.Context(), f)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			total, err := im.Count(r.Context(), f)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"total": total, "limit": f.Limit, "offset": f.Offset, "items": items,
			})
		})

		r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
			st, err := im.Stats(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, st)
		})

		r.Get("/export.xlsx", func(w http.ResponseWriter, r *http.Request) {
			f := filterFrom(r)
			f.Limit, f.Offset = 0, 0
			data, err := im.ExportXLSX(r.Context(), f)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			w.Header().Set("Content-Type", xlsxContentType)
			w.Header().Set("Content-Disposition", `attachment; filename="mcqs.xlsx"`)
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			w.WriteHeader(http.StatusOK)
			w.Write(data)
		})
	})

	r.Route("/api/batches", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			batches, err := im.Batches(r.Context(), queryInt(r, "limit", 0))
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			if batches == nil {
				batches = []Batch{}
			}
			writeJSON(w, http.StatusOK, batches)
		})

		r.Get("/{batchID}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "batchID")
			b, err := im.Batch(r.Context(), id)
			if err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			records, err := im.List(r.Context(), Filter{BatchID: id})
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"batch": b, "records": records})
		})

		r.With(authed).Delete("/{batchID}", func(w http.ResponseWriter, r *http.Request) {
			if err := im.DeleteBatch(r.Context(), chi.URLParam(r, "batchID")); err != nil {
				writeError(w, statusFor(err), err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	return r
}

func (im *Importer) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		}
		im.logger.Info("http request", append(attrs, kit.CallerFrom(r.Context()).LogAttrs()...)...)
	})
}

// statusFor maps importer and pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, docpipe.ErrUnsupportedFormat), errors.Is(err, ErrFormatNotAllowed):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidMetadata):
		return http.StatusBadRequest
	case errors.Is(err, docpipe.ErrUnreadable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func filterFrom(r *http.Request) Filter {
	q := r.URL.Query()
	f := Filter{
		Topic:      q.Get("topic"),
		Subtopic:   q.Get("subtopic"),
		Difficulty: q.Get("difficulty"),
		BatchID:    q.Get("batch_id"),
		Limit:      queryInt(r, "limit", defaultPageSize),
		Offset:     queryInt(r, "offset", 0),
	}
	if f.Limit <= 0 || f.Limit > maxPageSize {
		f.Limit = defaultPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func queryBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}
