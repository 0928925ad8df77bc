package httpserver

import (
	"net/http"

	"magnolia/contexts/operations/cron-service/application/workers"
)

func (s *Server) registerCronRoutes() {
	s.router.Get("/cron/daily", s.modules.Cron.Handler.HandleDaily)
	s.router.Get("/cron/resync-profiles", s.cronJob(workers.JobResyncProfiles))
	s.router.Get("/cron/verify-deliverables", s.cronJob(workers.JobVerifyDeliverables))
	s.router.Get("/cron/reconcile-fulfillments", s.cronJob(workers.JobReconcileFulfillments))
	s.router.Get("/cron/flush-notifications", s.cronJob(workers.JobFlushNotifications))
}

func (s *Server) cronJob(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.modules.Cron.Handler.HandleJob(w, r, name)
	}
}
