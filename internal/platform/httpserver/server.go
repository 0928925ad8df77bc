package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	attributionservice "magnolia/contexts/commerce-attribution/attribution-service"
	clickservice "magnolia/contexts/commerce-attribution/click-service"
	webhookservice "magnolia/contexts/commerce-attribution/webhook-service"
	matchservice "magnolia/contexts/match-fulfillment/match-service"
	cronservice "magnolia/contexts/operations/cron-service"
	notificationservice "magnolia/contexts/operations/notification-service"

	_ "magnolia/internal/platform/httpserver/docs"
)

// Modules carries every mounted module. The server owns routing and
// status-code mapping only; all behavior lives behind the module handlers.
type Modules struct {
	Match         matchservice.Module
	Webhooks      webhookservice.Module
	Clicks        clickservice.Module
	Attribution   attributionservice.Module
	Notifications notificationservice.Module
	Cron          cronservice.Module
}

type Server struct {
	router  chi.Router
	logger  *slog.Logger
	addr    string
	modules Modules
}

func New(modules Modules, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		router:  chi.NewRouter(),
		logger:  logger,
		addr:    addr,
		modules: modules,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.router)
}

// Handler exposes the routed mux, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.registerMatchRoutes()
	s.registerWebhookRoutes()
	s.registerClickRoutes()
	s.registerAttributionRoutes()
	s.registerNotificationRoutes()
	s.registerCronRoutes()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
