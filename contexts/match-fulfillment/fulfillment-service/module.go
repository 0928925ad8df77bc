package fulfillmentservice

import (
	"log/slog"

	"magnolia/contexts/match-fulfillment/fulfillment-service/adapters/memory"
	"magnolia/contexts/match-fulfillment/fulfillment-service/application/commands"
	"magnolia/contexts/match-fulfillment/fulfillment-service/application/workers"
	"magnolia/contexts/match-fulfillment/fulfillment-service/ports"
)

type Module struct {
	Runner        commands.RunFulfillmentUseCase
	MarkFulfilled commands.MarkFulfilledUseCase
	Reconciler    workers.Reconciler
	Store         *memory.Store
	Gateway       *memory.FakeGateway
}

type Dependencies struct {
	Records        ports.RecordRepository
	Discounts      ports.DiscountRepository
	Shipments      ports.ShipmentRepository
	Gateway        ports.CommerceGateway
	Matches        ports.MatchReader
	Directory      ports.DirectoryReader
	Clock          ports.Clock
	IDs            ports.IDGenerator
	ReconcileBatch int
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	runner := commands.RunFulfillmentUseCase{
		Records:   deps.Records,
		Discounts: deps.Discounts,
		Shipments: deps.Shipments,
		Gateway:   deps.Gateway,
		Matches:   deps.Matches,
		Directory: deps.Directory,
		Clock:     deps.Clock,
		IDs:       deps.IDs,
		Logger:    deps.Logger,
	}
	return Module{
		Runner: runner,
		MarkFulfilled: commands.MarkFulfilledUseCase{
			Records: deps.Records,
			Clock:   deps.Clock,
			Logger:  deps.Logger,
		},
		Reconciler: workers.Reconciler{
			Records:   deps.Records,
			Discounts: deps.Discounts,
			Runner:    runner,
			BatchSize: deps.ReconcileBatch,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-memory store and fake
// commerce gateway for tests. Cross-module ports (match reader, directory)
// must come through deps.
func NewInMemoryModule(deps Dependencies) Module {
	store := memory.NewStore()
	if deps.Records == nil {
		deps.Records = store
	}
	if deps.Discounts == nil {
		deps.Discounts = store.Discounts()
	}
	if deps.Shipments == nil {
		deps.Shipments = store.Shipments()
	}
	var gateway *memory.FakeGateway
	if deps.Gateway == nil {
		gateway = &memory.FakeGateway{}
		deps.Gateway = gateway
	}
	if deps.Clock == nil {
		deps.Clock = store
	}
	if deps.IDs == nil {
		deps.IDs = store
	}
	module := NewModule(deps)
	module.Store = store
	module.Gateway = gateway
	return module
}
