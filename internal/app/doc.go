// Package app is the top-level application controller. It owns the
// signed-in identity, the job selection, and the current recording as
// explicit state, and coordinates the capture, analysis, reconciliation,
// and save components around the backend client.
package app
