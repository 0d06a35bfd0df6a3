package transport

import (
	"context"
	"net/http"

	"bloom-shop/internal/middleware"
	"bloom-shop/internal/notify"
)

// withRecorder attaches a fresh notification recorder to the request context
func withRecorder(r *http.Request) (context.Context, *notify.Recorder) {
	rec := notify.NewRecorder()
	return notify.WithNotifier(r.Context(), rec), rec
}

// sessionID returns the caller's session, or the remote address when the
// session middleware is not mounted
func sessionID(r *http.Request) string {
	if id, ok := middleware.GetSessionID(r.Context()); ok {
		return id
	}
	return r.RemoteAddr
}
