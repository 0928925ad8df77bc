package unit

import (
	"context"
	"errors"
	"testing"

	notificationservice "magnolia/contexts/operations/notification-service"
	application "magnolia/contexts/operations/notification-service/application"
	"magnolia/contexts/operations/notification-service/application/commands"
	"magnolia/contexts/operations/notification-service/domain/entities"
	domainerrors "magnolia/contexts/operations/notification-service/domain/errors"
)

func newNotificationModule() notificationservice.Module {
	return notificationservice.NewInMemoryModule(notificationservice.Dependencies{
		Templates: application.DefaultTemplates(),
	})
}

func enqueue(t *testing.T, module notificationservice.Module, to string, messageType string) {
	t.Helper()
	err := module.Enqueue.Execute(context.Background(), commands.EnqueueCommand{
		Channel:     "email",
		To:          to,
		MessageType: messageType,
		Payload: map[string]any{
			"creator_name":  "Nadia",
			"offer_title":   "Spring Seeding",
			"campaign_code": "NADIA10",
		},
	})
	if err != nil {
		t.Fatalf("enqueue notification: %v", err)
	}
}

func statusByRecipient(module notificationservice.Module) map[string]entities.NotificationStatus {
	result := make(map[string]entities.NotificationStatus)
	for _, row := range module.Store.All() {
		result[row.To] = row.Status
	}
	return result
}

func TestDispatcherDeliversPendingRows(t *testing.T) {
	ctx := context.Background()
	module := newNotificationModule()
	enqueue(t, module, "nadia@example.com", "match_approved")
	enqueue(t, module, "omar@example.com", "match_approved")

	report, err := module.Dispatcher.RunOnce(ctx)
	if err != nil {
		t.Fatalf("dispatch run: %v", err)
	}
	if report.Selected != 2 || report.Sent != 2 || report.Failed != 0 {
		t.Fatalf("unexpected dispatch report: %+v", report)
	}

	sent := module.Transport.Sent()
	if len(sent) != 2 {
		t.Fatalf("expected two deliveries, got %d", len(sent))
	}
	if sent[0].Subject != "You're in: Spring Seeding" {
		t.Fatalf("template not rendered: %+v", sent[0])
	}
	for to, status := range statusByRecipient(module) {
		if status != entities.NotificationStatusSent {
			t.Fatalf("row for %s has status %q, want sent", to, status)
		}
	}
}

func TestDispatcherIsolatesPerRowFailures(t *testing.T) {
	ctx := context.Background()
	module := newNotificationModule()
	module.Transport.FailFor("broken@example.com")
	enqueue(t, module, "broken@example.com", "match_approved")
	enqueue(t, module, "nadia@example.com", "match_approved")

	report, err := module.Dispatcher.RunOnce(ctx)
	if err != nil {
		t.Fatalf("dispatch run: %v", err)
	}
	if report.Sent != 1 || report.Failed != 1 {
		t.Fatalf("one failure must not block the batch: %+v", report)
	}

	statuses := statusByRecipient(module)
	if statuses["broken@example.com"] != entities.NotificationStatusError {
		t.Fatalf("failed row status %q, want error", statuses["broken@example.com"])
	}
	if statuses["nadia@example.com"] != entities.NotificationStatusSent {
		t.Fatalf("healthy row status %q, want sent", statuses["nadia@example.com"])
	}

	// Error is terminal: the next sweep selects nothing.
	report, err = module.Dispatcher.RunOnce(ctx)
	if err != nil {
		t.Fatalf("second dispatch run: %v", err)
	}
	if report.Selected != 0 {
		t.Fatalf("error rows must not be re-selected: %+v", report)
	}
}

func TestDispatcherFailsRowsWithoutTemplate(t *testing.T) {
	ctx := context.Background()
	module := newNotificationModule()
	enqueue(t, module, "nadia@example.com", "no_such_message_type")

	report, err := module.Dispatcher.RunOnce(ctx)
	if err != nil {
		t.Fatalf("dispatch run: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("missing template must fail the row: %+v", report)
	}
	rows := module.Store.All()
	if len(rows) != 1 || rows[0].Status != entities.NotificationStatusError || rows[0].LastError == "" {
		t.Fatalf("unexpected row state: %+v", rows)
	}
}

func TestRequeueFlipsErrorRowBackToPending(t *testing.T) {
	ctx := context.Background()
	module := newNotificationModule()
	module.Transport.FailFor("broken@example.com")
	enqueue(t, module, "broken@example.com", "match_approved")
	if _, err := module.Dispatcher.RunOnce(ctx); err != nil {
		t.Fatalf("dispatch run: %v", err)
	}

	row := module.Store.All()[0]
	resp, err := module.Handler.RequeueHandler(ctx, row.NotificationID)
	if err != nil {
		t.Fatalf("requeue: %v", err)
	}
	if !resp.OK {
		t.Fatalf("unexpected requeue response: %+v", resp)
	}
	if module.Store.All()[0].Status != entities.NotificationStatusPending {
		t.Fatalf("requeued row status %q, want pending", module.Store.All()[0].Status)
	}

	// The requeued row is picked up by the next sweep.
	report, err := module.Dispatcher.RunOnce(ctx)
	if err != nil {
		t.Fatalf("redelivery run: %v", err)
	}
	if report.Selected != 1 {
		t.Fatalf("requeued row must be re-selected: %+v", report)
	}
}

func TestRequeueRejectsNonErrorRows(t *testing.T) {
	ctx := context.Background()
	module := newNotificationModule()
	enqueue(t, module, "nadia@example.com", "match_approved")

	row := module.Store.All()[0]
	_, err := module.Handler.RequeueHandler(ctx, row.NotificationID)
	if !errors.Is(err, domainerrors.ErrNotRequeueable) {
		t.Fatalf("pending row requeue should fail, got %v", err)
	}

	if _, err := module.Dispatcher.RunOnce(ctx); err != nil {
		t.Fatalf("dispatch run: %v", err)
	}
	_, err = module.Handler.RequeueHandler(ctx, row.NotificationID)
	if !errors.Is(err, domainerrors.ErrNotRequeueable) {
		t.Fatalf("sent row requeue should fail, got %v", err)
	}
}

func TestRequeueUnknownNotification(t *testing.T) {
	module := newNotificationModule()
	_, err := module.Handler.RequeueHandler(context.Background(), "id-9999")
	if !errors.Is(err, domainerrors.ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
}
