package entities

import "time"

// LinkClick is one resolved click-through on a campaign code. Append-only:
// clicks are a raw counter, repeat visits from the same client all count.
type LinkClick struct {
	ClickID   string
	MatchID   string
	Code      string
	IPHash    string
	UserAgent string
	Referer   string
	CreatedAt time.Time
}
