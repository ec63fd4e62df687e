// internal/api/router.go
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires all routes. Metrics and health sit outside the
// versioned prefix.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/run", h.Run).Methods(http.MethodPost)
	v1.HandleFunc("/input/{session_id}", h.Input).Methods(http.MethodPost)
	v1.HandleFunc("/prospect/{session_id}", h.Prospect).Methods(http.MethodPost)
	v1.HandleFunc("/end/{session_id}", h.End).Methods(http.MethodPost)
	v1.HandleFunc("/outcome/{session_id}", h.Outcome).Methods(http.MethodGet)
	v1.HandleFunc("/trace/{session_id}", h.Trace).Methods(http.MethodGet)

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}
