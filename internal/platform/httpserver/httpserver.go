package httpserver

import (
	"net/http"
	"time"
)

// New builds the server carrying the registry API. ReadHeaderTimeout bounds
// clients that stall before sending headers so they cannot pin connections.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
