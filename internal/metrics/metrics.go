// Package metrics holds the Prometheus collectors shared by the back office.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sidaya"

var (
	// IngestBatches counts ingestion attempts by final status (SUCCESS / FAILED / ERROR).
	IngestBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_batches_total",
		Help:      "Transaction ingestion batches by outcome.",
	}, []string{"status"})

	// IngestRows counts processed rows by result (accepted / rejected).
	IngestRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_rows_total",
		Help:      "Transaction rows processed by ingestion.",
	}, []string{"result"})

	// MenuRecalculations counts menu availability values rewritten.
	MenuRecalculations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "menu_recalculations_total",
		Help:      "Menu availability values recomputed and persisted.",
	})

	// Exports counts export attempts by kind and status.
	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Export attempts by kind and status.",
	}, []string{"kind", "status"})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
