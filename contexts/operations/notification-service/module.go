package notificationservice

import (
	"log/slog"

	httpadapter "magnolia/contexts/operations/notification-service/adapters/http"
	"magnolia/contexts/operations/notification-service/adapters/memory"
	application "magnolia/contexts/operations/notification-service/application"
	"magnolia/contexts/operations/notification-service/application/commands"
	"magnolia/contexts/operations/notification-service/application/workers"
	"magnolia/contexts/operations/notification-service/ports"
)

type Module struct {
	Enqueue    commands.EnqueueUseCase
	Requeue    commands.RequeueErroredUseCase
	Dispatcher workers.Dispatcher
	Handler    httpadapter.Handler
	Store      *memory.Store
	Transport  *memory.FakeTransport
}

type Dependencies struct {
	Notifications ports.NotificationRepository
	Transport     ports.Transport
	Templates     map[string]application.MessageTemplate
	Clock         ports.Clock
	IDs           ports.IDGenerator
	DispatchBatch int
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	requeue := commands.RequeueErroredUseCase{
		Notifications: deps.Notifications,
		Clock:         deps.Clock,
		Logger:        deps.Logger,
	}
	return Module{
		Enqueue: commands.EnqueueUseCase{
			Notifications: deps.Notifications,
			Clock:         deps.Clock,
			IDs:           deps.IDs,
			Logger:        deps.Logger,
		},
		Requeue: requeue,
		Handler: httpadapter.Handler{
			Requeue: requeue,
			Logger:  deps.Logger,
		},
		Dispatcher: workers.Dispatcher{
			Notifications: deps.Notifications,
			Transport:     deps.Transport,
			Templates:     deps.Templates,
			Clock:         deps.Clock,
			BatchSize:     deps.DispatchBatch,
			Logger:        deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-memory store and a
// recording fake transport for tests.
func NewInMemoryModule(deps Dependencies) Module {
	store := memory.NewStore()
	if deps.Notifications == nil {
		deps.Notifications = store
	}
	var transport *memory.FakeTransport
	if deps.Transport == nil {
		transport = memory.NewFakeTransport()
		deps.Transport = transport
	}
	if deps.Clock == nil {
		deps.Clock = store
	}
	if deps.IDs == nil {
		deps.IDs = store
	}
	module := NewModule(deps)
	module.Store = store
	module.Transport = transport
	return module
}
