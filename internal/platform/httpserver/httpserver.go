package httpserver

import (
	"net/http"
	"time"
)

// New builds the portal's HTTP server. Request deadlines are owned by the
// per-route Timeout middleware, so only the header read and idle keep-alive
// are bounded here; a WriteTimeout would cut off slow application-list
// responses before the middleware deadline fires.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
