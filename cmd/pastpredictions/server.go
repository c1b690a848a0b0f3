package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var errServerClosed = http.ErrServerClosed

type healthCheck func(ctx context.Context) error

// newRouter serves Prometheus metrics and a health check.
// A nil check always reports healthy.
func newRouter(check healthCheck) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		status, code := "healthy", http.StatusOK
		body := map[string]string{}
		if check != nil {
			if err := check(req.Context()); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
				body["error"] = err.Error()
			}
		}
		body["status"] = status

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(body)
	}).Methods(http.MethodGet)
	return r
}

func newMetricsServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
