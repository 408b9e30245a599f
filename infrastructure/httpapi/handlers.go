package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ahrav/go-underwrite/internal/domain"
	"github.com/ahrav/go-underwrite/internal/logging"
)

// Messages returned for failures the caller cannot act on. The detail
// goes to the log line carrying the request id, never to the client.
const (
	msgPredictInternal = "Internal prediction error"
	msgBatchInternal   = "Internal batch prediction error"
	msgExplainInternal = "Internal explainability error"
	msgExplainDisabled = "Explainability is not available in this runtime"
)

// maxBodyBytes bounds request bodies. A full 500-record batch fits with
// plenty of headroom.
const maxBodyBytes = 10 << 20

// GET /health, GET /healthz — liveness probe, always 200.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — the service is ready once constructed; the payload
// reports which optional capabilities this runtime carries.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ready",
		"explain_available": s.service.ExplainAvailable(),
	})
}

// GET /metrics — the aggregator's JSON snapshot.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.aggregator.Snapshot())
}

// POST /predict — score one applicant record.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var record domain.RawRecord
	if !s.decodeJSON(w, r, &record) {
		return
	}

	result, err := s.service.Predict(r.Context(), record)
	if err != nil {
		s.writeServiceError(r.Context(), w, err, msgPredictInternal)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// POST /predict/batch — score up to MaxBatchSize records, results in
// input order.
func (s *Server) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	var batch domain.RawBatch
	if !s.decodeJSON(w, r, &batch) {
		return
	}

	result, err := s.service.PredictBatch(r.Context(), batch)
	if err != nil {
		s.writeServiceError(r.Context(), w, err, msgBatchInternal)
		return
	}
	if s.collector != nil {
		s.collector.RecordHistogram("batch_records", float64(result.BatchSize), nil)
	}
	writeJSON(w, http.StatusOK, result)
}

// POST /predict/explain — score one record and attach ranked feature
// attributions.
func (s *Server) handlePredictExplain(w http.ResponseWriter, r *http.Request) {
	var record domain.RawRecord
	if !s.decodeJSON(w, r, &record) {
		return
	}

	result, err := s.service.PredictExplain(r.Context(), record)
	if err != nil {
		s.writeServiceError(r.Context(), w, err, msgExplainInternal)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// decodeJSON reads the request body into v, answering 400 on malformed
// input. It reports whether decoding succeeded.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return false
	}
	return true
}

// clientFault reports whether err stems from the caller's payload
// rather than a server-side failure.
func clientFault(err error) bool {
	var schemaErr *domain.SchemaError
	var contractErr *domain.FeatureContractError
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &schemaErr), errors.As(err, &contractErr), errors.As(err, &validationErr):
		return true
	case errors.Is(err, domain.ErrEmptyBatch), errors.Is(err, domain.ErrBatchTooLarge):
		return true
	}
	return false
}

// writeServiceError maps pipeline errors onto HTTP statuses: contract
// and validation faults surface verbatim as 400s, an absent explainer
// capability as 501, and everything else as an opaque 500.
func (s *Server) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, internalMsg string) {
	switch {
	case errors.Is(err, domain.ErrExplainerUnavailable):
		writeError(w, http.StatusNotImplemented, msgExplainDisabled)
	case clientFault(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logging.FromContext(ctx).Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, internalMsg)
	}
}
