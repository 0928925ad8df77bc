package entities

import "time"

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusError   NotificationStatus = "error"
)

// Notification is one queued outbound message. Delivery is at-least-once:
// a pending row stays selectable until it lands in sent or error. Error is
// terminal until an operator requeues it.
type Notification struct {
	NotificationID string
	Channel        string
	To             string
	MessageType    string
	Payload        map[string]any
	Status         NotificationStatus
	LastError      string
	CreatedAt      time.Time
	SentAt         *time.Time
}

func (n Notification) Terminal() bool {
	return n.Status == NotificationStatusSent || n.Status == NotificationStatusError
}
