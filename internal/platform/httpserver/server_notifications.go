package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	notificationerrors "magnolia/contexts/operations/notification-service/domain/errors"
	notificationhttp "magnolia/contexts/operations/notification-service/transport/http"
)

func (s *Server) registerNotificationRoutes() {
	s.router.Post("/api/notifications/{notification_id}/requeue", s.handleRequeueNotification)
}

func (s *Server) handleRequeueNotification(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Notifications.Handler.RequeueHandler(r.Context(), chi.URLParam(r, "notification_id"))
	if err != nil {
		writeNotificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeNotificationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notificationerrors.ErrNotificationNotFound):
		writeNotificationError(w, http.StatusNotFound, "notification_not_found", err.Error())
	case errors.Is(err, notificationerrors.ErrNotRequeueable):
		writeNotificationError(w, http.StatusConflict, "not_requeueable", err.Error())
	default:
		writeNotificationError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeNotificationError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, notificationhttp.ErrorResponse{Code: code, Message: message})
}
