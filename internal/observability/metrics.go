// Package observability registers the service's Prometheus collectors.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	resolutionsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sleeve_selector",
		Subsystem: "sizing",
		Name:      "resolutions_total",
		Help:      "Number of successful size resolutions, labeled by table and fit.",
	}, []string{"table", "fit"})

	resolutionErrorsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sleeve_selector",
		Subsystem: "sizing",
		Name:      "resolution_errors_total",
		Help:      "Number of rejected size resolutions, labeled by table and reason.",
	}, []string{"table", "reason"})

	referenceEntriesGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sleeve_selector",
		Subsystem: "reference",
		Name:      "entries",
		Help:      "Number of entries per loaded reference table.",
	}, []string{"table"})

	referenceLoadedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sleeve_selector",
		Subsystem: "reference",
		Name:      "loaded_timestamp_seconds",
		Help:      "Unix timestamp at which the reference tables were loaded.",
	})

	catalogProductsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sleeve_selector",
		Subsystem: "catalog",
		Name:      "products",
		Help:      "Number of products in the loaded sleeve catalog.",
	})

	compatibleHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sleeve_selector",
		Subsystem: "catalog",
		Name:      "compatible_products",
		Help:      "Number of compatible products returned per query.",
		Buckets:   prometheus.LinearBuckets(0, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(
		resolutionsCounter,
		resolutionErrorsCounter,
		referenceEntriesGauge,
		referenceLoadedGauge,
		catalogProductsGauge,
		compatibleHistogram,
	)
}

// RecordResolution counts a successful resolution.
func RecordResolution(table, fit string) {
	resolutionsCounter.WithLabelValues(table, fit).Inc()
}

// RecordResolutionError counts a rejected resolution.
func RecordResolutionError(table, reason string) {
	resolutionErrorsCounter.WithLabelValues(table, reason).Inc()
}

// RecordReferenceTable sets the entry count of a loaded table.
func RecordReferenceTable(table string, entries int) {
	referenceEntriesGauge.WithLabelValues(table).Set(float64(entries))
}

// RecordReferenceLoaded updates the reference load watermark.
func RecordReferenceLoaded(ts time.Time) {
	if ts.IsZero() {
		return
	}
	referenceLoadedGauge.Set(float64(ts.Unix()))
}

// RecordCatalogSize sets the catalog product gauge.
func RecordCatalogSize(products int) {
	catalogProductsGauge.Set(float64(products))
}

// ObserveCompatible records the size of a compatibility result.
func ObserveCompatible(matches int) {
	compatibleHistogram.Observe(float64(matches))
}
