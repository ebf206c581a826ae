// Package server provides the optional local HTTP listener exposing
// health and Prometheus metrics endpoints for long-running invocations.
package server
