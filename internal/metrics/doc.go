// Package metrics defines the Prometheus instrumentation for the voice
// relay: upload counters, capture size/duration histograms, per-stage
// pipeline timings, and HTTP handler metrics.
package metrics
