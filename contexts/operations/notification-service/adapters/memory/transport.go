package memory

import (
	"context"
	"errors"
	"sync"
)

type SentMessage struct {
	Channel string
	To      string
	Subject string
	Body    string
}

// FakeTransport records every send and can be told to fail for specific
// recipients.
type FakeTransport struct {
	mu      sync.Mutex
	sent    []SentMessage
	failFor map[string]bool
}

func NewFakeTransport() *FakeTransport {
	return &FakeTransport{failFor: make(map[string]bool)}
}

func (t *FakeTransport) Send(_ context.Context, channel string, to string, subject string, body string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failFor[to] {
		return errors.New("transport unavailable")
	}
	t.sent = append(t.sent, SentMessage{Channel: channel, To: to, Subject: subject, Body: body})
	return nil
}

func (t *FakeTransport) FailFor(to string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failFor[to] = true
}

func (t *FakeTransport) Sent() []SentMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	sent := make([]SentMessage, len(t.sent))
	copy(sent, t.sent)
	return sent
}
