package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/screen-inventory-service/internal/logging"
	"github.com/preston-bernstein/screen-inventory-service/internal/providers/ssp"
	"github.com/preston-bernstein/screen-inventory-service/internal/store"
)

const maxIngestBytes = 8 << 20

// RecordFailureView is one skipped record in an ingest response.
type RecordFailureView struct {
	Index    int    `json:"index"`
	SourceID string `json:"sourceId,omitempty"`
	VenueID  string `json:"venueId,omitempty"`
	Error    string `json:"error"`
}

// ViolationView is one integrity issue in an ingest response.
type ViolationView struct {
	ScreenID string `json:"screenId"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

// IngestResponse summarizes a POST /ingest call.
type IngestResponse struct {
	Received   int                 `json:"received"`
	Converted  int                 `json:"converted"`
	Added      int                 `json:"added"`
	Replaced   int                 `json:"replaced"`
	Collapsed  int                 `json:"collapsed"`
	Failed     int                 `json:"failed"`
	Warnings   int                 `json:"warnings"`
	Errors     int                 `json:"errors"`
	Failures   []RecordFailureView `json:"failures,omitempty"`
	Violations []ViolationView     `json:"violations,omitempty"`
}

func newIngestResponse(res store.BatchResult) IngestResponse {
	out := IngestResponse{
		Received:  res.Received,
		Converted: res.Converted,
		Added:     res.Added,
		Replaced:  res.Replaced,
		Collapsed: res.Collapsed,
		Failed:    res.Failed(),
		Warnings:  res.Warnings,
		Errors:    res.Errors,
	}
	for _, f := range res.Failures {
		view := RecordFailureView{Index: f.Index, SourceID: f.SourceID, VenueID: f.VenueID}
		if f.Err != nil {
			view.Error = f.Err.Error()
		}
		out.Failures = append(out.Failures, view)
	}
	for _, v := range res.Violations {
		out.Violations = append(out.Violations, ViolationView{ScreenID: v.ScreenID, Field: v.Field, Message: v.Message})
	}
	return out
}

// Ingest accepts a JSON batch (bare array or envelope), validates it against the batch
// schema and merges it into the store.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	if h.ingester == nil {
		writeError(w, r, http.StatusServiceUnavailable, "ingest not configured", logger)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIngestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "payload too large", logger)
			return
		}
		writeError(w, r, http.StatusBadRequest, "unreadable body", logger)
		return
	}

	records, err := ssp.DecodeBatch(body)
	if err != nil {
		logging.Warn(logger, "ingest payload rejected", "error", err)
		msg := "invalid JSON"
		if errors.Is(err, ssp.ErrInvalidPayload) {
			msg = "payload does not match batch schema"
		}
		writeErrorDetail(w, r, http.StatusBadRequest, msg, err.Error(), logger)
		return
	}

	res, err := h.ingester.AddInventory(r.Context(), records)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNothingConverted):
		writeJSON(w, http.StatusUnprocessableEntity, newIngestResponse(res), logger)
		return
	case errors.Is(err, store.ErrClosed):
		writeError(w, r, http.StatusServiceUnavailable, "store closed", logger)
		return
	default:
		logging.Error(logger, "ingest failed", err)
		writeError(w, r, http.StatusInternalServerError, "ingest failed", logger)
		return
	}

	logging.Info(logger, "ingest merged",
		slog.Int(logging.FieldBatchSize, res.Received),
		slog.Int(logging.FieldConverted, res.Converted),
		slog.Int(logging.FieldFailed, res.Failed()),
	)
	writeJSON(w, http.StatusOK, newIngestResponse(res), logger)
}
