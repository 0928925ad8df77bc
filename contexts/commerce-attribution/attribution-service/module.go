package attributionservice

import (
	"log/slog"

	httpadapter "magnolia/contexts/commerce-attribution/attribution-service/adapters/http"
	"magnolia/contexts/commerce-attribution/attribution-service/adapters/memory"
	"magnolia/contexts/commerce-attribution/attribution-service/application/commands"
	"magnolia/contexts/commerce-attribution/attribution-service/application/queries"
	"magnolia/contexts/commerce-attribution/attribution-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Matches     ports.MatchReader
	Stats       ports.StatsReader
	Redemptions ports.RedemptionRepository
	Directory   ports.DirectoryReader
	Clock       ports.Clock
	IDs         ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Attribution: queries.AttributionQueryUseCase{
				Matches:   deps.Matches,
				Stats:     deps.Stats,
				Directory: deps.Directory,
				Logger:    deps.Logger,
			},
			RecordRedemption: commands.RecordRedemptionUseCase{
				Matches:     deps.Matches,
				Redemptions: deps.Redemptions,
				Directory:   deps.Directory,
				Clock:       deps.Clock,
				IDs:         deps.IDs,
				Logger:      deps.Logger,
			},
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the seedable in-memory store
// for tests. The directory reader must come through deps.
func NewInMemoryModule(deps Dependencies) Module {
	store := memory.NewStore()
	if deps.Matches == nil {
		deps.Matches = store
	}
	if deps.Stats == nil {
		deps.Stats = store
	}
	if deps.Redemptions == nil {
		deps.Redemptions = store
	}
	if deps.Clock == nil {
		deps.Clock = store
	}
	if deps.IDs == nil {
		deps.IDs = store
	}
	module := NewModule(deps)
	module.Store = store
	return module
}
