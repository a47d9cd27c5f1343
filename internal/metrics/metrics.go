// Package metrics exposes ingestion and rendering counters in Prometheus
// form, written out as a node-exporter textfile at the end of a run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"dominion/internal/dump"
	"dominion/internal/store"
)

const namespace = "dominion"

// Collector owns a private registry so repeated runs and tests never
// collide on the global one
type Collector struct {
	registry *prometheus.Registry

	lines          prometheus.Counter
	truncatedLines prometheus.Counter
	discardedBytes prometheus.Counter
	rows           *prometheus.CounterVec
	sections       *prometheus.CounterVec
	canvasPixels   *prometheus.GaugeVec
	records        *prometheus.GaugeVec
}

// NewCollector creates and registers all metrics
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dump",
			Name:      "lines_total",
			Help:      "Lines read from dumps",
		}),
		truncatedLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dump",
			Name:      "truncated_lines_total",
			Help:      "Lines cut at the line capacity",
		}),
		discardedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dump",
			Name:      "discarded_bytes_total",
			Help:      "Bytes thrown away after truncated lines",
		}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dump",
			Name:      "rows_total",
			Help:      "Table rows by table kind and outcome",
		}, []string{"table", "outcome"}),
		sections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dump",
			Name:      "sections_total",
			Help:      "Table sections entered by table kind",
		}, []string{"table"}),
		canvasPixels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "canvas_pixels",
			Help:      "Canvas size in pixels along each axis",
		}, []string{"axis"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "records",
			Help:      "Records held in the store by kind",
		}, []string{"kind"}),
	}

	c.registry.MustRegister(c.lines, c.truncatedLines, c.discardedBytes, c.rows, c.sections, c.canvasPixels, c.records)
	return c
}

// Registry returns the collector's registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveParse adds the counters of one parse
func (c *Collector) ObserveParse(stats dump.Stats) {
	c.lines.Add(float64(stats.Lines))
	c.truncatedLines.Add(float64(stats.TruncatedLines))
	c.discardedBytes.Add(float64(stats.DiscardedBytes))

	for _, kind := range dump.TableKinds {
		_, decoded, dropped := stats.RowsFor(kind)
		c.rows.WithLabelValues(kind.String(), "decoded").Add(float64(decoded))
		c.rows.WithLabelValues(kind.String(), "dropped").Add(float64(dropped))
		c.sections.WithLabelValues(kind.String()).Add(float64(stats.Sections[kind]))
	}
	c.rows.WithLabelValues(dump.TableUnknown.String(), "skipped").Add(float64(stats.SkippedRows))
	c.sections.WithLabelValues(dump.TableUnknown.String()).Add(float64(stats.Sections[dump.TableUnknown]))
}

// ObserveStore records the store's size
func (c *Collector) ObserveStore(st *store.Store) {
	c.records.WithLabelValues("agent").Set(float64(st.AgentCount()))
	c.records.WithLabelValues("spatial_object").Set(float64(st.ObjectCount()))
}

// ObserveCanvas records the output dimensions
func (c *Collector) ObserveCanvas(width, height int) {
	c.canvasPixels.WithLabelValues("x").Set(float64(width))
	c.canvasPixels.WithLabelValues("y").Set(float64(height))
}

// WriteTextfile writes all metrics to path in the text exposition format
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
