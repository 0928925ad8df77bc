package httpadapter

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"magnolia/contexts/operations/cron-service/application/workers"
	httptransport "magnolia/contexts/operations/cron-service/transport/http"
)

const (
	// HeaderScheduler marks requests from the platform-internal scheduler,
	// which cannot set an Authorization header.
	HeaderScheduler = "X-Scheduler-Secret"
)

type Handler struct {
	Orchestrator workers.Orchestrator
	Secret       string
	Logger       *slog.Logger
}

// HandleDaily runs the timezone-gated composite.
func (h Handler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid cron credential")
		return
	}
	report, err := h.Orchestrator.RunDaily(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	response := httptransport.DailyResponse{OK: true, Skipped: report.Skipped}
	for _, result := range report.Jobs {
		response.Jobs = append(response.Jobs, toJobDTO(result))
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleJob runs one named sub-job under its own lock.
func (h Handler) HandleJob(w http.ResponseWriter, r *http.Request, name string) {
	if !h.authorized(r) {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid cron credential")
		return
	}
	job, exists := h.Orchestrator.JobByName(name)
	if !exists {
		h.writeError(w, http.StatusNotFound, "unknown_job", "unknown cron job")
		return
	}
	result := h.Orchestrator.RunJob(r.Context(), job)
	h.writeJSON(w, http.StatusOK, httptransport.JobResponse{
		OK:       result.OK,
		Skipped:  result.Skipped,
		Error:    result.Error,
		Counters: result.Counters,
	})
}

func (h Handler) authorized(r *http.Request) bool {
	if h.Secret == "" {
		return false
	}
	if header := r.Header.Get(HeaderScheduler); header != "" {
		return subtle.ConstantTimeCompare([]byte(header), []byte(h.Secret)) == 1
	}
	bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(bearer), []byte(h.Secret)) == 1
}

func toJobDTO(result workers.JobResult) httptransport.JobResultDTO {
	return httptransport.JobResultDTO{
		Name:     result.Name,
		OK:       result.OK,
		Skipped:  result.Skipped,
		Error:    result.Error,
		Counters: result.Counters,
	}
}

func (h Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h Handler) writeError(w http.ResponseWriter, status int, code string, message string) {
	h.writeJSON(w, status, httptransport.ErrorResponse{Code: code, Message: message})
}
