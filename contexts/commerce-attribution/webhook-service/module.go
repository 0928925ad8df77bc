package webhookservice

import (
	"log/slog"

	httpadapter "magnolia/contexts/commerce-attribution/webhook-service/adapters/http"
	"magnolia/contexts/commerce-attribution/webhook-service/adapters/memory"
	"magnolia/contexts/commerce-attribution/webhook-service/application/commands"
	"magnolia/contexts/commerce-attribution/webhook-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Orders          ports.OrderRepository
	Refunds         ports.RefundRepository
	Matches         ports.MatchReader
	Fulfillment     ports.FulfillmentMarker
	Rescheduler     ports.DeliverableRescheduler
	Notifier        ports.Notifier
	Directory       ports.DirectoryReader
	Stores          ports.SubscriptionWriter
	Clock           ports.Clock
	EnabledChannels []string
	Logger          *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			IngestOrder: commands.IngestOrderUseCase{
				Orders:  deps.Orders,
				Matches: deps.Matches,
				Clock:   deps.Clock,
				Logger:  deps.Logger,
			},
			IngestRefund: commands.IngestRefundUseCase{
				Orders:  deps.Orders,
				Refunds: deps.Refunds,
				Clock:   deps.Clock,
				Logger:  deps.Logger,
			},
			IngestFulfillment: commands.IngestFulfillmentUseCase{
				Fulfillment:     deps.Fulfillment,
				Rescheduler:     deps.Rescheduler,
				Matches:         deps.Matches,
				Directory:       deps.Directory,
				Notifier:        deps.Notifier,
				EnabledChannels: deps.EnabledChannels,
				Logger:          deps.Logger,
			},
			IngestSubscription: commands.IngestSubscriptionUseCase{
				Directory: deps.Directory,
				Stores:    deps.Stores,
				Clock:     deps.Clock,
				Logger:    deps.Logger,
			},
			Directory: deps.Directory,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-memory store for tests.
// Cross-module ports (match reader, fulfillment marker, directory) must
// come through deps.
func NewInMemoryModule(deps Dependencies) Module {
	store := memory.NewStore()
	if deps.Orders == nil {
		deps.Orders = store
	}
	if deps.Refunds == nil {
		deps.Refunds = store.Refunds()
	}
	if deps.Clock == nil {
		deps.Clock = store
	}
	module := NewModule(deps)
	module.Store = store
	return module
}
