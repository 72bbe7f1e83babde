package main

import (
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/opentraffic/citysim/internal/obs"
)

func serveMetrics(port int, logger *log.Entry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", obs.Handler())
	addr := fmt.Sprintf(":%d", port)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.WithError(err).Warn("metrics server stopped")
		}
	}()
}
