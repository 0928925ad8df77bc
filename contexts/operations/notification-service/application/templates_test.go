package application

import (
	"strings"
	"testing"
)

func TestRenderSubstitutesPayloadKeys(t *testing.T) {
	template := MessageTemplate{
		Subject: "You're in: {{.offer_title}}",
		Body:    "Hi {{.creator_name}}, use code {{.campaign_code}}.",
	}
	subject, body, err := template.Render(map[string]any{
		"offer_title":   "Spring Seeding",
		"creator_name":  "Nadia",
		"campaign_code": "NADIA10",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "You're in: Spring Seeding" {
		t.Fatalf("unexpected subject: %q", subject)
	}
	if body != "Hi Nadia, use code NADIA10." {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestRenderToleratesMissingKeys(t *testing.T) {
	template := MessageTemplate{Subject: "Hello {{.creator_name}}", Body: "Reason: {{.reason}}"}
	subject, _, err := template.Render(map[string]any{"creator_name": "Nadia"})
	if err != nil {
		t.Fatalf("render with missing key: %v", err)
	}
	if !strings.HasPrefix(subject, "Hello") {
		t.Fatalf("unexpected subject: %q", subject)
	}
}

func TestDefaultTemplatesCoverPipelineMessageTypes(t *testing.T) {
	templates := DefaultTemplates()
	for _, messageType := range []string{
		"match_approved",
		"match_revoked",
		"order_shipped",
		"repost_required",
		"deliverable_overdue",
	} {
		if _, exists := templates[messageType]; !exists {
			t.Fatalf("missing default template for %s", messageType)
		}
	}
}
