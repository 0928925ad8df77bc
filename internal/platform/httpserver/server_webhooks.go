package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) registerWebhookRoutes() {
	s.router.Post("/webhooks/commerce/{topic}", s.handleCommerceWebhook)
}

func (s *Server) handleCommerceWebhook(w http.ResponseWriter, r *http.Request) {
	s.modules.Webhooks.Handler.HandleWebhook(w, r, chi.URLParam(r, "topic"))
}
