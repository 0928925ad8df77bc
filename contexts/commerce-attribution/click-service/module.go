package clickservice

import (
	"log/slog"
	"time"

	httpadapter "magnolia/contexts/commerce-attribution/click-service/adapters/http"
	"magnolia/contexts/commerce-attribution/click-service/adapters/memory"
	"magnolia/contexts/commerce-attribution/click-service/adapters/ratelimit"
	"magnolia/contexts/commerce-attribution/click-service/application/queries"
	"magnolia/contexts/commerce-attribution/click-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Resolve queries.ResolveRedirectUseCase
	Store   *memory.Store
	Limiter *ratelimit.FixedWindowLimiter
}

type Dependencies struct {
	Clicks        ports.ClickRepository
	Matches       ports.MatchReader
	Directory     ports.DirectoryReader
	Products      ports.ProductLinks
	Limiter       ports.RateLimiter
	Clock         ports.Clock
	IDs           ports.IDGenerator
	HomeURL       string
	RatePerMinute int
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	resolve := queries.ResolveRedirectUseCase{
		Clicks:    deps.Clicks,
		Matches:   deps.Matches,
		Directory: deps.Directory,
		Products:  deps.Products,
		Limiter:   deps.Limiter,
		Clock:     deps.Clock,
		IDs:       deps.IDs,
		HomeURL:   deps.HomeURL,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Resolve: resolve, Logger: deps.Logger},
		Resolve: resolve,
	}
}

// NewInMemoryModule wires the module against the in-memory store and a
// fresh fixed-window limiter for tests. Cross-module ports (match reader,
// directory, product links) must come through deps.
func NewInMemoryModule(deps Dependencies) Module {
	store := memory.NewStore()
	var limiter *ratelimit.FixedWindowLimiter
	if deps.Clicks == nil {
		deps.Clicks = store
	}
	if deps.Limiter == nil {
		limiter = ratelimit.NewFixedWindowLimiter(deps.RatePerMinute, time.Minute)
		deps.Limiter = limiter
	}
	if deps.Clock == nil {
		deps.Clock = store
	}
	if deps.IDs == nil {
		deps.IDs = store
	}
	module := NewModule(deps)
	module.Store = store
	module.Limiter = limiter
	return module
}
