package matchservice

import (
	"log/slog"

	httpadapter "magnolia/contexts/match-fulfillment/match-service/adapters/http"
	"magnolia/contexts/match-fulfillment/match-service/adapters/memory"
	"magnolia/contexts/match-fulfillment/match-service/application/commands"
	"magnolia/contexts/match-fulfillment/match-service/application/queries"
	"magnolia/contexts/match-fulfillment/match-service/application/workers"
	"magnolia/contexts/match-fulfillment/match-service/domain/entities"
	"magnolia/contexts/match-fulfillment/match-service/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Verifier workers.DeliverableVerifier
	Store    *memory.Store
}

type Dependencies struct {
	Matches         ports.MatchRepository
	Deliverables    ports.DeliverableRepository
	Directory       ports.DirectoryReader
	Fulfillment     ports.FulfillmentRunner
	Notifier        ports.Notifier
	Posts           ports.PostChecker
	Clock           ports.Clock
	Codes           ports.CodeGenerator
	EnabledChannels []string
	VerifierBatch   int
	Logger          *slog.Logger
}

func NewModule(deps Dependencies) Module {
	approve := commands.ApproveMatchUseCase{
		Matches:         deps.Matches,
		Deliverables:    deps.Deliverables,
		Directory:       deps.Directory,
		Fulfillment:     deps.Fulfillment,
		Notifier:        deps.Notifier,
		Clock:           deps.Clock,
		Codes:           deps.Codes,
		EnabledChannels: deps.EnabledChannels,
		Logger:          deps.Logger,
	}
	revoke := commands.RevokeMatchUseCase{
		Matches:         deps.Matches,
		Directory:       deps.Directory,
		Notifier:        deps.Notifier,
		Clock:           deps.Clock,
		EnabledChannels: deps.EnabledChannels,
		Logger:          deps.Logger,
	}
	submit := commands.SubmitDeliverableUseCase{
		Matches:      deps.Matches,
		Deliverables: deps.Deliverables,
		Directory:    deps.Directory,
		Clock:        deps.Clock,
		Logger:       deps.Logger,
	}
	verify := commands.VerifyDeliverableUseCase{
		Matches:      deps.Matches,
		Deliverables: deps.Deliverables,
		Directory:    deps.Directory,
		Clock:        deps.Clock,
		Logger:       deps.Logger,
	}
	reject := commands.RejectDeliverableUseCase{
		Matches:      deps.Matches,
		Deliverables: deps.Deliverables,
		Directory:    deps.Directory,
		Clock:        deps.Clock,
		Logger:       deps.Logger,
	}
	repost := commands.RequireRepostUseCase{
		Matches:         deps.Matches,
		Deliverables:    deps.Deliverables,
		Directory:       deps.Directory,
		Notifier:        deps.Notifier,
		Clock:           deps.Clock,
		EnabledChannels: deps.EnabledChannels,
		Logger:          deps.Logger,
	}
	reschedule := commands.RescheduleDeliverableUseCase{
		Matches:      deps.Matches,
		Deliverables: deps.Deliverables,
		Directory:    deps.Directory,
		Clock:        deps.Clock,
		Logger:       deps.Logger,
	}
	getMatch := queries.GetMatchUseCase{
		Matches:      deps.Matches,
		Deliverables: deps.Deliverables,
		Logger:       deps.Logger,
	}
	listMatches := queries.ListMatchesByOfferUseCase{
		Matches:   deps.Matches,
		Directory: deps.Directory,
		Logger:    deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			ApproveMatch:      approve,
			RevokeMatch:       revoke,
			SubmitDeliverable: submit,
			VerifyDeliverable: verify,
			RejectDeliverable: reject,
			RequireRepost:     repost,
			Reschedule:        reschedule,
			GetMatch:          getMatch,
			ListMatches:       listMatches,
			Logger:            deps.Logger,
		},
		Verifier: workers.DeliverableVerifier{
			Matches:         deps.Matches,
			Deliverables:    deps.Deliverables,
			Directory:       deps.Directory,
			Posts:           deps.Posts,
			Notifier:        deps.Notifier,
			Clock:           deps.Clock,
			BatchSize:       deps.VerifierBatch,
			EnabledChannels: deps.EnabledChannels,
			Logger:          deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-memory store for tests.
// Cross-module ports (fulfillment, notifications, post checks) stay nil
// unless injected through deps.
func NewInMemoryModule(seed []entities.Match, deps Dependencies) Module {
	store := memory.NewStore(seed)
	if deps.Matches == nil {
		deps.Matches = store
	}
	if deps.Deliverables == nil {
		deps.Deliverables = store
	}
	if deps.Clock == nil {
		deps.Clock = store
	}
	if deps.Codes == nil {
		deps.Codes = store
	}
	module := NewModule(deps)
	module.Store = store
	return module
}
