// Package metrics records per-run counters of a krakviz analysis in a
// private Prometheus registry. The registry can be written to a node
// exporter textfile with --metrics-file.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "krakviz"

// Metrics holds the collectors of one run.
type Metrics struct {
	reg *prometheus.Registry

	// RecordsTotal counts classifier output rows read, by status (classified, unclassified, other).
	RecordsTotal *prometheus.CounterVec

	// LineageEntries is the number of taxa in the loaded lineage store.
	LineageEntries prometheus.Gauge

	// TaxaTotal counts distinct taxa by stage (observed, filtered, resolved).
	TaxaTotal *prometheus.CounterVec

	// SkippedTotal counts observations and dump lines dropped, by reason.
	SkippedTotal *prometheus.CounterVec

	// TreeNodes is the size of the assembled tree by node kind (observed, placeholder).
	TreeNodes *prometheus.GaugeVec

	// StageSeconds is the wall time of each pipeline stage.
	StageSeconds *prometheus.GaugeVec
}

// New creates the collectors in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		RecordsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Classifier output rows read, by status",
		}, []string{"status"}),
		LineageEntries: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lineage_entries",
			Help:      "Taxa available in the lineage store",
		}),
		TaxaTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "taxa_total",
			Help:      "Distinct taxa by pipeline stage",
		}, []string{"stage"}),
		SkippedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_total",
			Help:      "Observations or lineage lines dropped, by reason",
		}, []string{"reason"}),
		TreeNodes: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tree_nodes",
			Help:      "Nodes of the assembled tree by kind",
		}, []string{"kind"}),
		StageSeconds: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_seconds",
			Help:      "Wall time of each stage in seconds",
		}, []string{"stage"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// RecordClassification adds the row counts of one classifier file.
func (m *Metrics) RecordClassification(records, classified, unclassified int) {
	m.RecordsTotal.WithLabelValues("classified").Add(float64(classified))
	m.RecordsTotal.WithLabelValues("unclassified").Add(float64(unclassified))
	if other := records - classified - unclassified; other > 0 {
		m.RecordsTotal.WithLabelValues("other").Add(float64(other))
	}
}

// RecordTaxa adds n taxa at stage.
func (m *Metrics) RecordTaxa(stage string, n int) {
	m.TaxaTotal.WithLabelValues(stage).Add(float64(n))
}

// RecordSkips adds per-reason skip counts.
func (m *Metrics) RecordSkips(byReason map[string]int) {
	for reason, n := range byReason {
		m.SkippedTotal.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordTree sets the tree size gauges.
func (m *Metrics) RecordTree(observed, placeholders int) {
	m.TreeNodes.WithLabelValues("observed").Set(float64(observed))
	m.TreeNodes.WithLabelValues("placeholder").Set(float64(placeholders))
}

// Time runs fn and records its wall time under stage.
func (m *Metrics) Time(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	m.StageSeconds.WithLabelValues(stage).Set(time.Since(start).Seconds())
	return err
}

// WriteTextfile writes every collected metric in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
