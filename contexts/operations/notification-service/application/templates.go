package application

import (
	"bytes"
	"text/template"
)

// MessageTemplate renders (type, payload) into a subject and body. The
// table is fixed: new message types ship with the code, not with data.
type MessageTemplate struct {
	Subject string
	Body    string
}

func DefaultTemplates() map[string]MessageTemplate {
	return map[string]MessageTemplate{
		"match_approved": {
			Subject: "You're in: {{.offer_title}}",
			Body:    "Hi {{.creator_name}}, your claim was approved. Share your link with code {{.campaign_code}} to start earning attribution.",
		},
		"match_revoked": {
			Subject: "Collaboration update: {{.offer_title}}",
			Body:    "Hi {{.creator_name}}, the brand has withdrawn this collaboration. Reason: {{.reason}}",
		},
		"order_shipped": {
			Subject: "Your product is on the way",
			Body:    "Good news {{.creator_name}}! Your seeding order shipped. Track it here: {{.tracking_url}} ({{.tracking_number}}).",
		},
		"repost_required": {
			Subject: "Your content needs a repost",
			Body:    "Hi {{.creator_name}}, your submitted content is no longer live. Please post again and resubmit the link. Reason: {{.reason}}",
		},
		"deliverable_overdue": {
			Subject: "Reminder: your content is due",
			Body:    "Hi {{.creator_name}}, your content for this collaboration was due on {{.due_at}}. Please submit your post link soon.",
		},
	}
}

// Render executes the template pair against the payload. Missing payload
// keys render as "<no value>" rather than failing the whole message.
func (t MessageTemplate) Render(payload map[string]any) (string, string, error) {
	subject, err := renderOne("subject", t.Subject, payload)
	if err != nil {
		return "", "", err
	}
	body, err := renderOne("body", t.Body, payload)
	if err != nil {
		return "", "", err
	}
	return subject, body, nil
}

func renderOne(name string, text string, payload map[string]any) (string, error) {
	parsed, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := parsed.Execute(&buf, payload); err != nil {
		return "", err
	}
	return buf.String(), nil
}
