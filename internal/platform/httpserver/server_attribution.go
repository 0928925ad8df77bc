package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	attributionerrors "magnolia/contexts/commerce-attribution/attribution-service/domain/errors"
	attributionhttp "magnolia/contexts/commerce-attribution/attribution-service/transport/http"
)

func (s *Server) registerAttributionRoutes() {
	s.router.Get("/api/creators/{creator_id}/attribution", s.handleCreatorAttribution)
	s.router.Get("/api/brands/{brand_id}/attribution", s.handleBrandAttribution)
	s.router.Post("/api/matches/{match_id}/redemptions", s.handleRecordRedemption)
}

func (s *Server) handleCreatorAttribution(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Attribution.Handler.CreatorAttributionHandler(r.Context(), chi.URLParam(r, "creator_id"))
	if err != nil {
		writeAttributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBrandAttribution(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Attribution.Handler.BrandAttributionHandler(r.Context(), chi.URLParam(r, "brand_id"))
	if err != nil {
		writeAttributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecordRedemption(w http.ResponseWriter, r *http.Request) {
	brandID := r.Header.Get("X-Brand-Id")
	if brandID == "" {
		writeAttributionError(w, http.StatusUnauthorized, "missing_brand", "X-Brand-Id header is required")
		return
	}
	var req attributionhttp.RecordRedemptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAttributionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.modules.Attribution.Handler.RecordRedemptionHandler(r.Context(), brandID, chi.URLParam(r, "match_id"), req)
	if err != nil {
		writeAttributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeAttributionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, attributionerrors.ErrMatchNotFound):
		writeAttributionError(w, http.StatusNotFound, "match_not_found", err.Error())
	case errors.Is(err, attributionerrors.ErrNotOfferOwner):
		writeAttributionError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, attributionerrors.ErrInvalidAmount),
		errors.Is(err, attributionerrors.ErrInvalidChannel):
		writeAttributionError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeAttributionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAttributionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, attributionhttp.ErrorResponse{Code: code, Message: message})
}
