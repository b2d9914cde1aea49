// Package server exposes the HTTP surface of the voice relay: the raw
// PCM upload endpoint, a text echo endpoint, health, and Prometheus
// metrics.
package server
