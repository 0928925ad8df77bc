package postcheck

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPChecker resolves a submitted permalink with a plain GET. A post is
// gone only on a definitive 404/410; anything else that isn't a 2xx/3xx is
// treated as a transient checker failure, not as vanished content.
type HTTPChecker struct {
	client *http.Client
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPChecker{client: &http.Client{Timeout: timeout}}
}

func (c *HTTPChecker) IsLive(ctx context.Context, permalink string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, permalink, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		return true, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return false, nil
	default:
		return false, fmt.Errorf("post check got status %d", resp.StatusCode)
	}
}
