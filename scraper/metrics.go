package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the extraction engine.
type Metrics struct {
	Registry          *prometheus.Registry
	PagesFetchedTotal prometheus.Counter
	FetchErrorsTotal  *prometheus.CounterVec
	DetectedTotal     prometheus.Counter
	ImportedTotal     *prometheus.CounterVec
	ImagesTotal       *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pagesFetched := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_pages_fetched_total",
			Help: "Listing pages fetched and parsed successfully.",
		},
	)
	fetchErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_fetch_errors_total",
			Help: "Page fetch failures by error type.",
		},
		[]string{"error_type"},
	)
	detected := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_products_detected_total",
			Help: "Product candidates discovered by structure detection.",
		},
	)
	imported := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_products_imported_total",
			Help: "Import outcomes per candidate.",
		},
		[]string{"result"},
	)
	imagesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_images_total",
			Help: "Image download and transcode outcomes.",
		},
		[]string{"result"},
	)

	registry.MustRegister(pagesFetched, fetchErrors, detected, imported, imagesTotal)

	return &Metrics{
		Registry:          registry,
		PagesFetchedTotal: pagesFetched,
		FetchErrorsTotal:  fetchErrors,
		DetectedTotal:     detected,
		ImportedTotal:     imported,
		ImagesTotal:       imagesTotal,
	}
}

// IncPageFetched increments the fetched pages counter.
func (m *Metrics) IncPageFetched() {
	if m == nil {
		return
	}
	m.PagesFetchedTotal.Inc()
}

// IncFetchError increments the fetch errors counter for a type label.
func (m *Metrics) IncFetchError(errorType string) {
	if m == nil {
		return
	}
	m.FetchErrorsTotal.WithLabelValues(errorType).Inc()
}

// AddDetected adds to the detected candidates counter.
func (m *Metrics) AddDetected(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DetectedTotal.Add(float64(n))
}

// IncImported increments the import outcome counter.
func (m *Metrics) IncImported(result string) {
	if m == nil {
		return
	}
	m.ImportedTotal.WithLabelValues(result).Inc()
}

// IncImage increments the image outcome counter.
func (m *Metrics) IncImage(result string) {
	if m == nil {
		return
	}
	m.ImagesTotal.WithLabelValues(result).Inc()
}
