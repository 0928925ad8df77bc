package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) registerClickRoutes() {
	s.router.Get("/r/{code}", s.handleRedirect)
}

func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	s.modules.Clicks.Handler.HandleRedirect(w, r, chi.URLParam(r, "code"))
}
