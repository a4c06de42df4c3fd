package handlers

import (
	"net/http"

	"swipehire/internal/metrics"
)

type MetricsHandler struct {
	handler *metrics.Handler
}

func NewMetricsHandler(collector *metrics.Collector) *MetricsHandler {
	return &MetricsHandler{handler: metrics.NewHandler(collector)}
}

func (h *MetricsHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}
