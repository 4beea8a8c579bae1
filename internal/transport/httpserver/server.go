package httpserver

import (
	"net/http"

	"permit-tracker-go/internal/config"
)

// New builds the API server. There is no WriteTimeout: object downloads
// stream until the client has read the whole body.
func New(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    64 << 10,
	}
}
