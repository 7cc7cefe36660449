package metric

import (
	"net/http"
	"time"
)

// NewServer returns an HTTP server exposing r on addr at /metrics.
// The caller starts it with ListenAndServe and stops it with Shutdown.
func NewServer(addr string, r *Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
