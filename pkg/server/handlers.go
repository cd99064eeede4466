package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"cmmc/validator/pkg/records"
	"cmmc/validator/pkg/telemetry/logging"
	"cmmc/validator/pkg/validation"
	"cmmc/validator/pkg/vocabulary"

	"github.com/go-chi/chi/v5"
)

// ValidateResponse is the JSON body of a successful validation.
type ValidateResponse struct {
	RunID    string             `json:"run_id"`
	Rows     int                `json:"rows"`
	Summary  validation.Summary `json:"summary"`
	Failures map[string][]int   `json:"failures"`
}

// SchemaErrorResponse is the 422 body for a table missing required columns.
type SchemaErrorResponse struct {
	Error          string   `json:"error"`
	MissingColumns []string `json:"missing_columns"`
	Hint           string   `json:"hint"`
}

// VocabularyResponse describes the loaded vocabulary.
type VocabularyResponse struct {
	Source          string              `json:"source"`
	LoadedAt        time.Time           `json:"loaded_at"`
	RequiredColumns []string            `json:"required_columns"`
	Fields          map[string][]string `json:"fields"`
}

type handler struct {
	validator  Validator
	vocabulary VocabularySource
	maxUpload  int64
	logger     *logging.Logger
}

// Register mounts the API endpoints on the router.
func (h *handler) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", h.handleValidate)
		r.Get("/vocabulary", h.handleVocabulary)
	})
}

func (h *handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vocab, err := h.vocabulary.Get()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "vocabulary_unavailable", err.Error())
		return
	}

	set, err := h.readTable(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload_too_large",
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_table", err.Error())
		return
	}

	result, err := h.validator.Run(ctx, vocab, set)
	if err != nil {
		var missing *validation.MissingColumnsError
		switch {
		case errors.As(err, &missing):
			writeJSON(w, http.StatusUnprocessableEntity, SchemaErrorResponse{
				Error:          missing.Error(),
				MissingColumns: missing.Columns,
				Hint:           missing.Hint(),
			})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.logger.WarnContext(ctx, "validation cancelled", "error", err)
			writeError(w, http.StatusServiceUnavailable, "cancelled", "validation was cancelled")
		default:
			h.logger.ErrorContext(ctx, "validation failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "validation failed")
		}
		return
	}

	w.Header().Set("X-Run-ID", result.RunID)

	if strings.EqualFold(r.URL.Query().Get("format"), "tsv") {
		w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
		w.Header().Set("Content-Disposition",
			mime.FormatMediaType("attachment", map[string]string{"filename": validation.OutputFileName}))
		w.WriteHeader(http.StatusOK)
		if err := result.WriteTSV(w); err != nil {
			h.logger.ErrorContext(ctx, "failed to write annotated table", "error", err)
		}
		return
	}

	failures := make(map[string][]int)
	for _, col := range result.Columns() {
		failures[col.Output] = result.Failures(col.Output)
	}
	writeJSON(w, http.StatusOK, ValidateResponse{
		RunID:    result.RunID,
		Rows:     result.Len(),
		Summary:  result.Summary(),
		Failures: failures,
	})
}

// readTable reads the uploaded TSV from a multipart "file" field or from
// the raw request body.
func (h *handler) readTable(w http.ResponseWriter, r *http.Request) (*records.RecordSet, error) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	var body io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("multipart upload needs a %q field: %w", "file", err)
		}
		defer file.Close()
		body = file
	}

	set, err := records.ReadTSV(body)
	if err != nil {
		return nil, err
	}
	return set, nil
}

func (h *handler) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	vocab, err := h.vocabulary.Get()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "vocabulary_unavailable", err.Error())
		return
	}

	fields := make(map[string][]string, len(vocabulary.ControlledFields))
	for _, field := range vocabulary.ControlledFields {
		if vocab.Has(field) {
			fields[field] = vocab.Allowed(field).Sorted()
		}
	}

	writeJSON(w, http.StatusOK, VocabularyResponse{
		Source:          vocab.Source(),
		LoadedAt:        vocab.LoadedAt(),
		RequiredColumns: h.validator.RequiredColumns(vocab),
		Fields:          fields,
	})
}
