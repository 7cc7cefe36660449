// Package metric provides Prometheus metrics for respkv.
//
//   - prometheus.go: the Registry with server and command metrics
//   - collector.go: scrape-time collectors backed by callbacks
//   - server.go: the /metrics HTTP endpoint
//
// Every metric lives under the respkv namespace.
package metric
