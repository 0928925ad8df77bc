package cronservice

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	httpadapter "magnolia/contexts/operations/cron-service/adapters/http"
	"magnolia/contexts/operations/cron-service/adapters/memory"
	"magnolia/contexts/operations/cron-service/application/workers"
	"magnolia/contexts/operations/cron-service/ports"
)

type Module struct {
	Orchestrator workers.Orchestrator
	Handler      httpadapter.Handler
	Locks        *memory.LockStore
}

type Dependencies struct {
	Locks    ports.LockRepository
	Clock    ports.Clock
	Jobs     []workers.SubJob
	Holder   string
	TTL      time.Duration
	Location *time.Location
	Secret   string
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	holder := deps.Holder
	if holder == "" {
		holder = uuid.NewString()
	}
	orchestrator := workers.Orchestrator{
		Locks:    deps.Locks,
		Clock:    deps.Clock,
		Holder:   holder,
		TTL:      deps.TTL,
		Location: deps.Location,
		Jobs:     deps.Jobs,
		Logger:   deps.Logger,
	}
	return Module{
		Orchestrator: orchestrator,
		Handler: httpadapter.Handler{
			Orchestrator: orchestrator,
			Secret:       deps.Secret,
			Logger:       deps.Logger,
		},
	}
}

// NewInMemoryModule wires the orchestrator against the in-memory lock
// table for tests. Sub-jobs come through deps.
func NewInMemoryModule(deps Dependencies) Module {
	locks := memory.NewLockStore()
	if deps.Locks == nil {
		deps.Locks = locks
	}
	if deps.Clock == nil {
		deps.Clock = locks
	}
	module := NewModule(deps)
	module.Locks = locks
	return module
}
