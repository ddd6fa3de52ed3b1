package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	appkcf "github.com/turtacn/kcfgraph/internal/application/kcf"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/kcfgraph/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/kcfgraph/pkg/errors"
)

// DefaultMaxBatchRecords bounds POST /kcf/batch.
const DefaultMaxBatchRecords = 1000

// KCFHandler serves the parse endpoints.
type KCFHandler struct {
	svc        appkcf.Service
	maxBytes   int64
	maxRecords int
	logger     logging.Logger
}

// NewKCFHandler creates a handler. maxBytes bounds a single-record body; a
// batch body may hold up to maxRecords of them.
func NewKCFHandler(svc appkcf.Service, maxBytes int64, logger logging.Logger) *KCFHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	return &KCFHandler{svc: svc, maxBytes: maxBytes, maxRecords: DefaultMaxBatchRecords, logger: logger.Named("http.kcf")}
}

// BatchRecord is one element of a batch request.
type BatchRecord struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// BatchRequest is the body of POST /api/v1/kcf/batch.
type BatchRequest struct {
	Records []BatchRecord `json:"records"`
}

// BatchAbortedResponse is returned when a fail-fast batch stops early.
type BatchAbortedResponse struct {
	ErrorResponse
	Result *appkcf.BatchResult `json:"result"`
}

// Parse handles POST /api/v1/kcf/parse. The body is the raw record text.
func (h *KCFHandler) Parse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		writeAppError(w, errors.New(errors.ErrCodeValidation, "request body too large or unreadable").WithCause(err))
		return
	}

	res, err := h.svc.Parse(r.Context(), appkcf.ParseInput{
		Name:   r.URL.Query().Get("name"),
		Text:   string(body),
		Source: prometheus.SourceHTTP,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Batch handles POST /api/v1/kcf/batch. Malformed records are reported per
// item with status 200; only an aborted fail-fast batch is an error.
func (h *KCFHandler) Batch(w http.ResponseWriter, r *http.Request) {
	limit := h.maxBytes * int64(h.maxRecords)
	var req BatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(&req); err != nil {
		writeAppError(w, errors.New(errors.ErrCodeBadRequest, "invalid batch body").WithCause(err))
		return
	}
	if len(req.Records) == 0 {
		writeAppError(w, errors.InvalidParam("records must not be empty"))
		return
	}
	if len(req.Records) > h.maxRecords {
		writeAppError(w, errors.New(errors.ErrCodeValidation, "too many records").
			WithDetailf("%d > %d", len(req.Records), h.maxRecords))
		return
	}

	inputs := make([]appkcf.ParseInput, len(req.Records))
	for i, rec := range req.Records {
		inputs[i] = appkcf.ParseInput{Name: rec.Name, Text: rec.Text, Source: prometheus.SourceHTTP}
	}

	res, err := h.svc.ParseBatch(r.Context(), inputs)
	if err != nil {
		if res == nil || !errors.IsCode(err, errors.ErrCodeKCFBatchFailed) {
			writeAppError(w, err)
			return
		}
		var ae *errors.AppError
		errors.As(err, &ae)
		writeJSON(w, errors.HTTPStatusForCode(errors.ErrCodeKCFBatchFailed), BatchAbortedResponse{
			ErrorResponse: ErrorResponse{Code: string(ae.Code), Message: ae.Message, Detail: ae.Detail},
			Result:        res,
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Object handles GET /api/v1/kcf/objects/*, parsing a record stored in the
// record bucket.
func (h *KCFHandler) Object(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	res, err := h.svc.ParseObject(r.Context(), key)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

//Personal.AI order the ending
