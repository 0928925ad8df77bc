package httpadapter

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"magnolia/contexts/commerce-attribution/click-service/application/queries"
)

type Handler struct {
	Resolve queries.ResolveRedirectUseCase
	Logger  *slog.Logger
}

// HandleRedirect answers GET /r/{code}. Always a 302 (or 429 past the rate
// limit), never a body.
func (h Handler) HandleRedirect(w http.ResponseWriter, r *http.Request, code string) {
	result, err := h.Resolve.Execute(r.Context(), queries.ResolveRedirectQuery{
		Code:      code,
		IP:        callerIP(r),
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("redirect resolution failed",
				"event", "click_resolve_failed",
				"module", "commerce-attribution/click-service",
				"layer", "adapter",
				"code", code,
				"error", err.Error(),
			)
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if result.Limited {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}
	http.Redirect(w, r, result.Location, http.StatusFound)
}

func callerIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.IndexByte(forwarded, ','); idx >= 0 {
			forwarded = forwarded[:idx]
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
