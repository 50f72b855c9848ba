package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouteRegistrar interface {
	RegisterRoutes(r *mux.Router)
}

func New(registrars ...RouteRegistrar) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	api := r.PathPrefix("/api/v1").Subrouter()
	for _, registrar := range registrars {
		if registrar != nil {
			registrar.RegisterRoutes(api)
		}
	}

	return r
}
