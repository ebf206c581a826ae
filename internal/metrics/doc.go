// Package metrics defines the Prometheus instrumentation for the voice
// note tool. Metrics are exposed by the optional operational HTTP
// listener in the server package.
package metrics
