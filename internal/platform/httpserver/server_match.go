package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	matcherrors "magnolia/contexts/match-fulfillment/match-service/domain/errors"
	matchhttp "magnolia/contexts/match-fulfillment/match-service/transport/http"
)

func (s *Server) registerMatchRoutes() {
	s.router.Post("/api/matches/{match_id}/approve", s.handleApproveMatch)
	s.router.Post("/api/matches/{match_id}/revoke", s.handleRevokeMatch)
	s.router.Post("/api/matches/{match_id}/deliverable/submit", s.handleSubmitDeliverable)
	s.router.Post("/api/matches/{match_id}/deliverable/verify", s.handleVerifyDeliverable)
	s.router.Post("/api/matches/{match_id}/deliverable/reject", s.handleRejectDeliverable)
	s.router.Post("/api/matches/{match_id}/deliverable/repost", s.handleRequireRepost)
	s.router.Get("/api/matches/{match_id}", s.handleGetMatch)
	s.router.Get("/api/offers/{offer_id}/matches", s.handleListMatches)
}

func (s *Server) handleApproveMatch(w http.ResponseWriter, r *http.Request) {
	brandID := r.Header.Get("X-Brand-Id")
	if brandID == "" {
		writeMatchError(w, http.StatusUnauthorized, "missing_brand", "X-Brand-Id header is required")
		return
	}
	resp, err := s.modules.Match.Handler.ApproveMatchHandler(r.Context(), brandID, chi.URLParam(r, "match_id"))
	if err != nil {
		writeMatchDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRevokeMatch(w http.ResponseWriter, r *http.Request) {
	brandID := r.Header.Get("X-Brand-Id")
	if brandID == "" {
		writeMatchError(w, http.StatusUnauthorized, "missing_brand", "X-Brand-Id header is required")
		return
	}
	var req matchhttp.RevokeMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMatchError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.modules.Match.Handler.RevokeMatchHandler(r.Context(), brandID, chi.URLParam(r, "match_id"), req); err != nil {
		writeMatchDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSubmitDeliverable(w http.ResponseWriter, r *http.Request) {
	creatorID := r.Header.Get("X-Creator-Id")
	if creatorID == "" {
		writeMatchError(w, http.StatusUnauthorized, "missing_creator", "X-Creator-Id header is required")
		return
	}
	var req matchhttp.SubmitDeliverableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMatchError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.modules.Match.Handler.SubmitDeliverableHandler(r.Context(), creatorID, chi.URLParam(r, "match_id"), req); err != nil {
		writeMatchDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleVerifyDeliverable(w http.ResponseWriter, r *http.Request) {
	brandID := r.Header.Get("X-Brand-Id")
	if brandID == "" {
		writeMatchError(w, http.StatusUnauthorized, "missing_brand", "X-Brand-Id header is required")
		return
	}
	var req matchhttp.VerifyDeliverableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMatchError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.modules.Match.Handler.VerifyDeliverableHandler(r.Context(), brandID, chi.URLParam(r, "match_id"), req); err != nil {
		writeMatchDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleRejectDeliverable(w http.ResponseWriter, r *http.Request) {
	brandID := r.Header.Get("X-Brand-Id")
	if brandID == "" {
		writeMatchError(w, http.StatusUnauthorized, "missing_brand", "X-Brand-Id header is required")
		return
	}
	var req matchhttp.RejectDeliverableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMatchError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.modules.Match.Handler.RejectDeliverableHandler(r.Context(), brandID, chi.URLParam(r, "match_id"), req); err != nil {
		writeMatchDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleRequireRepost(w http.ResponseWriter, r *http.Request) {
	brandID := r.Header.Get("X-Brand-Id")
	if brandID == "" {
		writeMatchError(w, http.StatusUnauthorized, "missing_brand", "X-Brand-Id header is required")
		return
	}
	var req matchhttp.RequireRepostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMatchError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.modules.Match.Handler.RequireRepostHandler(r.Context(), brandID, chi.URLParam(r, "match_id"), req); err != nil {
		writeMatchDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Match.Handler.GetMatchHandler(r.Context(), chi.URLParam(r, "match_id"))
	if err != nil {
		writeMatchDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	brandID := r.Header.Get("X-Brand-Id")
	if brandID == "" {
		writeMatchError(w, http.StatusUnauthorized, "missing_brand", "X-Brand-Id header is required")
		return
	}
	resp, err := s.modules.Match.Handler.ListMatchesHandler(r.Context(), brandID, chi.URLParam(r, "offer_id"))
	if err != nil {
		writeMatchDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeMatchDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, matcherrors.ErrMatchNotFound),
		errors.Is(err, matcherrors.ErrDeliverableNotFound):
		writeMatchError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, matcherrors.ErrNotOfferOwner),
		errors.Is(err, matcherrors.ErrNotMatchCreator):
		writeMatchError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, matcherrors.ErrMatchNotApprovable),
		errors.Is(err, matcherrors.ErrMatchNotRevocable),
		errors.Is(err, matcherrors.ErrSubmissionConflict),
		errors.Is(err, matcherrors.ErrDeliverableNotDue):
		writeMatchError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, matcherrors.ErrInvalidPermalink),
		errors.Is(err, matcherrors.ErrUsageRightsRequired),
		errors.Is(err, matcherrors.ErrVerificationNotPossible):
		writeMatchError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeMatchError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeMatchError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, matchhttp.ErrorResponse{Code: code, Message: message})
}
