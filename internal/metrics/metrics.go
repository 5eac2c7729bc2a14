package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Metrics counts redaction work on a private registry. The registry is
// written as a node_exporter textfile at the end of a run.
type Metrics struct {
	registry *prometheus.Registry

	documentsTotal *prometheus.CounterVec
	pagesTotal     *prometheus.CounterVec
	regionsTotal   *prometheus.CounterVec
	pageDuration   prometheus.Histogram

	logger *zap.Logger
}

func New(namespace string, logger *zap.Logger) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logger:   logger,
	}

	m.documentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed, by outcome",
		},
		[]string{"status"},
	)

	m.pagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Pages processed, by detected layout",
		},
		[]string{"layout"},
	)

	m.regionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "regions_total",
			Help:      "Regions blanked, by kind",
		},
		[]string{"kind"},
	)

	m.pageDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_duration_seconds",
			Help:      "Time to detect, paint and commit one page",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)

	m.registry.MustRegister(m.documentsTotal, m.pagesTotal, m.regionsTotal, m.pageDuration)
	return m
}

// PageLayout names the outcome of detection for a page
func PageLayout(header, footer bool) string {
	switch {
	case header && footer:
		return "header_footer"
	case header:
		return "header"
	case footer:
		return "footer"
	default:
		return "none"
	}
}

func (m *Metrics) RecordPage(layout string, duration time.Duration) {
	m.pagesTotal.WithLabelValues(layout).Inc()
	m.pageDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordRegion(kind string) {
	m.regionsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordDocument(status string) {
	m.documentsTotal.WithLabelValues(status).Inc()
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the text exposition format
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return err
	}
	m.logger.Debug("Metrics written", zap.String("path", path))
	return nil
}
