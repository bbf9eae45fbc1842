package httpapi

import (
	"net/http"

	"floodwatch/internal/config"
)

func NewServer(cfg config.Config, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: requestLogger(instrument("app", mux)),
	}
}
