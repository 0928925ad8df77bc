package unit

import (
	"context"
	"sync"
)

type enqueuedMessage struct {
	Channel     string
	To          string
	MessageType string
	Payload     map[string]any
}

// recordingNotifier captures cross-module notification enqueues.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []enqueuedMessage
}

func (n *recordingNotifier) Enqueue(
	_ context.Context,
	channel string,
	to string,
	messageType string,
	payload map[string]any,
) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, enqueuedMessage{
		Channel:     channel,
		To:          to,
		MessageType: messageType,
		Payload:     payload,
	})
	return nil
}

func (n *recordingNotifier) Messages() []enqueuedMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	messages := make([]enqueuedMessage, len(n.messages))
	copy(messages, n.messages)
	return messages
}

func (n *recordingNotifier) CountOfType(messageType string) int {
	count := 0
	for _, message := range n.Messages() {
		if message.MessageType == messageType {
			count++
		}
	}
	return count
}
